package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/RowanDark/xorsift/internal/env"
)

// Config captures the xorsift configuration resolved from defaults, optional
// files, and environment overrides.
type Config struct {
	Search SearchConfig `yaml:"search"`
	Decode DecodeConfig `yaml:"decode"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Trace  TraceConfig  `yaml:"trace"`
}

// SearchConfig controls the exhaustive search.
type SearchConfig struct {
	Workers int `yaml:"workers" validate:"gte=1"`
	// Top is the number of ranked rows shown; the full ranking is kept.
	Top int `yaml:"top" validate:"gte=0"`
	// HighMatch is the percentage above which a ranked row is highlighted.
	HighMatch float64 `yaml:"high_match" validate:"gte=0,lte=100"`
}

// DecodeConfig holds the default input formats and numeral policy.
type DecodeConfig struct {
	NumeralPolicy    string `yaml:"numeral_policy" validate:"oneof=wrap clamp reject"`
	CiphertextFormat string `yaml:"ciphertext_format" validate:"oneof=auto base64 hex decimal octal binary ascii"`
	KeyFormat        string `yaml:"key_format" validate:"oneof=auto base64 hex decimal octal binary ascii"`
}

// ServerConfig controls xorsiftd.
type ServerConfig struct {
	Addr     string `yaml:"addr" validate:"required,hostname_port"`
	MaxConns int    `yaml:"max_conns" validate:"gte=1"`
	// Token is read from the environment only and never from a file.
	Token string `yaml:"-"`
}

// LogConfig selects the operational logger and the run journal location.
type LogConfig struct {
	Level     string `yaml:"level" validate:"oneof=debug info warn error"`
	Format    string `yaml:"format" validate:"oneof=text json"`
	AuditPath string `yaml:"audit_path"`
}

// TraceConfig selects the span exporter.
type TraceConfig struct {
	Exporter string `yaml:"exporter" validate:"oneof=none stdout file"`
	Path     string `yaml:"path" validate:"required_if=Exporter file"`
}

// Default returns the built-in xorsift configuration.
func Default() Config {
	return Config{
		Search: SearchConfig{
			Workers:   runtime.GOMAXPROCS(0),
			Top:       50,
			HighMatch: 10,
		},
		Decode: DecodeConfig{
			NumeralPolicy:    "wrap",
			CiphertextFormat: "auto",
			KeyFormat:        "auto",
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:8477",
			MaxConns: 64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Trace: TraceConfig{
			Exporter: "none",
		},
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load resolves the xorsift configuration using defaults, configuration files,
// and environment overrides. The lookup order for configuration files is:
//  1. ~/.xorsift/config.yaml
//  2. ./xorsift.yml
//
// Environment variables prefixed with XORSIFT_ have the highest precedence. The merged result is validated.
func Load() (Config, error) {
	cfg := Default()

	if err := loadHomeConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLocalConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile applies a single YAML file over the defaults, then the environment.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if _, err := applyPath(&cfg, path); err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadHomeConfig(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("determine home directory: %w", err)
	}

	_, err = applyPath(cfg, filepath.Join(home, ".xorsift", "config.yaml"))
	return err
}

func loadLocalConfig(cfg *Config) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	_, err = applyPath(cfg, filepath.Join(wd, "xorsift.yml"))
	return err
}

// applyPath overlays the file at path onto cfg. A missing file is not an
// error; found reports whether it existed.
func applyPath(cfg *Config, path string) (found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := applyFileConfig(cfg, data); err != nil {
		return true, fmt.Errorf("parse config %s: %w", path, err)
	}
	return true, nil
}

// fileConfig mirrors Config with pointers so that a file only overrides the
// keys it actually sets.
type fileConfig struct {
	Search *struct {
		Workers   *int     `yaml:"workers"`
		Top       *int     `yaml:"top"`
		HighMatch *float64 `yaml:"high_match"`
	} `yaml:"search"`
	Decode *struct {
		NumeralPolicy    *string `yaml:"numeral_policy"`
		CiphertextFormat *string `yaml:"ciphertext_format"`
		KeyFormat        *string `yaml:"key_format"`
	} `yaml:"decode"`
	Server *struct {
		Addr     *string `yaml:"addr"`
		MaxConns *int    `yaml:"max_conns"`
	} `yaml:"server"`
	Log *struct {
		Level     *string `yaml:"level"`
		Format    *string `yaml:"format"`
		AuditPath *string `yaml:"audit_path"`
	} `yaml:"log"`
	Trace *struct {
		Exporter *string `yaml:"exporter"`
		Path     *string `yaml:"path"`
	} `yaml:"trace"`
}

func applyFileConfig(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if s := fc.Search; s != nil {
		setInt(&cfg.Search.Workers, s.Workers)
		setInt(&cfg.Search.Top, s.Top)
		if s.HighMatch != nil {
			cfg.Search.HighMatch = *s.HighMatch
		}
	}
	if d := fc.Decode; d != nil {
		setLower(&cfg.Decode.NumeralPolicy, d.NumeralPolicy)
		setLower(&cfg.Decode.CiphertextFormat, d.CiphertextFormat)
		setLower(&cfg.Decode.KeyFormat, d.KeyFormat)
	}
	if s := fc.Server; s != nil {
		setString(&cfg.Server.Addr, s.Addr)
		setInt(&cfg.Server.MaxConns, s.MaxConns)
	}
	if l := fc.Log; l != nil {
		setLower(&cfg.Log.Level, l.Level)
		setLower(&cfg.Log.Format, l.Format)
		setString(&cfg.Log.AuditPath, l.AuditPath)
	}
	if tr := fc.Trace; tr != nil {
		setLower(&cfg.Trace.Exporter, tr.Exporter)
		setString(&cfg.Trace.Path, tr.Path)
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setLower(dst *string, v *string) {
	if v != nil {
		*dst = strings.ToLower(strings.TrimSpace(*v))
	}
}

func applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"WORKERS", &cfg.Search.Workers},
		{"TOP", &cfg.Search.Top},
		{"MAX_CONNS", &cfg.Server.MaxConns},
	}
	for _, e := range ints {
		if val, ok := env.Get(e.name); ok {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s%s: %w", env.Prefix, e.name, err)
			}
			*e.dst = n
		}
	}
	if val, ok := env.Get("HIGH_MATCH"); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%sHIGH_MATCH: %w", env.Prefix, err)
		}
		cfg.Search.HighMatch = f
	}

	strs := []struct {
		name  string
		dst   *string
		lower bool
	}{
		{"NUMERAL_POLICY", &cfg.Decode.NumeralPolicy, true},
		{"CIPHERTEXT_FORMAT", &cfg.Decode.CiphertextFormat, true},
		{"KEY_FORMAT", &cfg.Decode.KeyFormat, true},
		{"SERVER", &cfg.Server.Addr, false},
		{"LOG_LEVEL", &cfg.Log.Level, true},
		{"LOG_FORMAT", &cfg.Log.Format, true},
		{"AUDIT_LOG", &cfg.Log.AuditPath, false},
		{"TRACE_EXPORTER", &cfg.Trace.Exporter, true},
		{"TRACE_PATH", &cfg.Trace.Path, false},
		{"API_TOKEN", &cfg.Server.Token, false},
	}
	for _, e := range strs {
		if val, ok := env.Get(e.name); ok {
			if e.lower {
				val = strings.ToLower(val)
			}
			*e.dst = val
		}
	}
	return nil
}
