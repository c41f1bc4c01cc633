package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RowanDark/xorsift/internal/api"
	"github.com/RowanDark/xorsift/internal/config"
)

func TestServeBootsAndShutsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	cfg := config.Default()
	cfg.Server.Token = "test-token"
	cfg.Log.AuditPath = filepath.Join(t.TempDir(), "audit.jsonl")

	var logs bytes.Buffer
	errCh := make(chan error, 1)
	go func() {
		errCh <- serve(ctx, cfg, lis, &logs)
	}()

	base := "http://" + lis.Addr().String()
	client := &http.Client{Timeout: 5 * time.Second}

	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = client.Get(base + "/healthz")
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodPost, base+"/v1/detect", strings.NewReader(`{"text":"0101"}`))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("detect without token: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("detect without token status = %d, want 401", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPost, base+"/v1/detect", strings.NewReader(`{"text":"0101"}`))
	req.Header.Set(api.TokenHeader, "test-token")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"format":"base64"`) {
		t.Fatalf("detect = %d %s", resp.StatusCode, body)
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down after context cancellation")
	}
}

func TestServeRejectsBadLogLevel(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer lis.Close()

	cfg := config.Default()
	cfg.Log.Level = "verbose"
	if err := serve(context.Background(), cfg, lis, io.Discard); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}
