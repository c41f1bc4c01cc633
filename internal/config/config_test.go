package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

)

func chdir(t *testing.T, dir string) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadPrecedence(t *testing.T) {
	tempDir := t.TempDir()

	homeDir := filepath.Join(tempDir, "home")
	t.Setenv("HOME", homeDir)
	writeFile(t, filepath.Join(homeDir, ".xorsift", "config.yaml"), `
search:
  workers: 3
  top: 20
decode:
  numeral_policy: clamp
server:
  addr: 0.0.0.0:1111
`)

	// Provide a local YAML config overriding the home file.
	workDir := filepath.Join(tempDir, "work")
	writeFile(t, filepath.Join(workDir, "xorsift.yml"), `
search:
  top: 5
server:
  addr: 127.0.0.1:6500
log:
  format: JSON
`)

	// Ensure env overrides beat file configuration.
	t.Setenv("XORSIFT_WORKERS", "7")
	t.Setenv("XORSIFT_AUDIT_LOG", "/tmp/audit.jsonl")

	chdir(t, workDir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Search.Workers, "env beats both files")
	assert.Equal(t, 5, cfg.Search.Top, "local file beats home file")
	assert.Equal(t, "clamp", cfg.Decode.NumeralPolicy, "home file value survives")
	assert.Equal(t, "127.0.0.1:6500", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/audit.jsonl", cfg.Log.AuditPath)
	assert.Equal(t, 64, cfg.Server.MaxConns, "untouched keys keep defaults")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 50, cfg.Search.Top)
	assert.Equal(t, 10.0, cfg.Search.HighMatch)
	assert.Equal(t, "127.0.0.1:8477", cfg.Server.Addr)
}

func TestLoadHomeThenLocalThenEnv(t *testing.T) {
	homeDir := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", homeDir)
	work := t.TempDir()
	chdir(t, work)

	writeFile(t, filepath.Join(homeDir, ".xorsift", "config.yaml"), "search:\n  top: 12\ndecode:\n  numeral_policy: clamp\n")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Search.Top)
	assert.Equal(t, "clamp", cfg.Decode.NumeralPolicy)

	writeFile(t, filepath.Join(work, "xorsift.yml"), "search:\n  top: 30\n")
	t.Setenv("XORSIFT_NUMERAL_POLICY", "Reject")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Search.Top, "local file overrides the home file")
	assert.Equal(t, "reject", cfg.Decode.NumeralPolicy, "environment wins")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "zero workers", file: "search:\n  workers: 0\n"},
		{name: "unknown policy", file: "decode:\n  numeral_policy: saturate\n"},
		{name: "unknown format", file: "decode:\n  key_format: rot13\n"},
		{name: "bad addr", file: "server:\n  addr: nowhere\n"},
		{name: "high match above 100", file: "search:\n  high_match: 101\n"},
		{name: "file exporter needs path", file: "trace:\n  exporter: file\n"},
		{name: "malformed yaml", file: "search: [\n"},
		{name: "non numeric env", env: map[string]string{"XORSIFT_TOP": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
			dir := t.TempDir()
			if tt.file != "" {
				writeFile(t, filepath.Join(dir, "xorsift.yml"), tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			chdir(t, dir)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "trace:\n  exporter: file\n  path: /tmp/spans.json\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Trace.Exporter)
	assert.Equal(t, "/tmp/spans.json", cfg.Trace.Path)

	cfg, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.Trace.Exporter)
}

func TestValidateDefaults(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestAPITokenComesFromEnvOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.yaml")
	writeFile(t, path, "server:\n  token: from-file\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.Token)

	t.Setenv("XORSIFT_API_TOKEN", "from-env")
	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.Token)
}
