package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/RowanDark/xorsift/internal/api"
	"github.com/RowanDark/xorsift/internal/cipher"
	"github.com/RowanDark/xorsift/internal/config"
	"github.com/RowanDark/xorsift/internal/logging"
	"github.com/RowanDark/xorsift/internal/observability/tracing"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "read configuration from this file instead of the default locations")
	addr := flag.String("addr", "", "address for the REST API to listen on (overrides server.addr)")
	maxConns := flag.Int("max-conns", 0, "maximum concurrent connections (overrides server.max_conns)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("xorsiftd %s\n", version)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if strings.TrimSpace(*addr) != "" {
		cfg.Server.Addr = strings.TrimSpace(*addr)
	}
	if *maxConns > 0 {
		cfg.Server.MaxConns = *maxConns
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen on %s: %v\n", cfg.Server.Addr, err)
		os.Exit(1)
	}
	if err := serve(ctx, cfg, ln, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if strings.TrimSpace(path) != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// serve runs the API on ln until ctx is cancelled. Logs go to logOut.
func serve(ctx context.Context, cfg config.Config, ln net.Listener, logOut io.Writer) error {
	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Writer:  logOut,
		Service: "xorsiftd",
	})
	if err != nil {
		return err
	}

	var audit *logging.AuditLogger
	if path := strings.TrimSpace(cfg.Log.AuditPath); path != "" {
		audit, err = logging.NewAuditLogger("xorsiftd", logging.WithoutStdout(), logging.WithFile(path))
		if err != nil {
			return fmt.Errorf("open run journal: %w", err)
		}
		defer audit.Close()
	}

	shutdownTrace, err := tracing.Setup(ctx, tracing.Config{
		Exporter:    cfg.Trace.Exporter,
		FilePath:    cfg.Trace.Path,
		Writer:      logOut,
		ServiceName: "xorsiftd",
	})
	if err != nil {
		return fmt.Errorf("configure tracing: %w", err)
	}
	defer func() {
		if err := shutdownTrace(context.Background()); err != nil {
			logger.Warn("trace shutdown failed", "error", err)
		}
	}()

	policy, err := cipher.ParseNumeralPolicy(cfg.Decode.NumeralPolicy)
	if err != nil {
		return err
	}
	server, err := api.NewServer(api.Config{
		Addr:          ln.Addr().String(),
		MaxConns:      cfg.Server.MaxConns,
		Token:         cfg.Server.Token,
		Workers:       cfg.Search.Workers,
		Top:           cfg.Search.Top,
		HighMatch:     cfg.Search.HighMatch,
		NumeralPolicy: policy,
		Logger:        logger,
		Audit:         audit,
	})
	if err != nil {
		return err
	}
	if cfg.Server.Token == "" {
		logger.Warn("api token not set; /v1 endpoints are unauthenticated")
	}
	logger.Info("xorsiftd starting", "version", version, "addr", ln.Addr().String())
	return server.Serve(ctx, ln)
}
