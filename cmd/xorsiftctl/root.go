package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/RowanDark/xorsift/internal/config"
	"github.com/RowanDark/xorsift/internal/logging"
	"github.com/RowanDark/xorsift/internal/observability/tracing"
	"github.com/RowanDark/xorsift/internal/search"
	"github.com/RowanDark/xorsift/internal/ux"
)

// app is the state shared by every subcommand once the persistent pre-run
// has resolved configuration.
type app struct {
	configPath string
	logLevel   string

	cfg           config.Config
	logger        *slog.Logger
	audit         *logging.AuditLogger
	printer       *ux.Printer
	shutdownTrace func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "xorsiftctl",
		Short:         "Rank repeating-key XOR decodings over matrix and rotation permutations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "read configuration from this file instead of the default locations")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		newDecodeCmd(a),
		newDetectCmd(a),
		newMatrixCmd(a),
		newAnalyzeCmd(a),
		newAutoCmd(a),
		newCompareCmd(a),
		newBaselineCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if strings.TrimSpace(a.configPath) != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}

	a.logger, err = logging.New(logging.Options{
		Level:   a.cfg.Log.Level,
		Format:  a.cfg.Log.Format,
		Writer:  cmd.ErrOrStderr(),
		Service: "xorsiftctl",
	})
	if err != nil {
		return err
	}

	if path := strings.TrimSpace(a.cfg.Log.AuditPath); path != "" {
		a.audit, err = logging.NewAuditLogger("xorsiftctl", logging.WithoutStdout(), logging.WithFile(path))
		if err != nil {
			return fmt.Errorf("open run journal: %w", err)
		}
	}

	a.shutdownTrace, err = tracing.Setup(cmd.Context(), tracing.Config{
		Exporter:    a.cfg.Trace.Exporter,
		FilePath:    a.cfg.Trace.Path,
		Writer:      cmd.ErrOrStderr(),
		ServiceName: "xorsiftctl",
	})
	if err != nil {
		return fmt.Errorf("configure tracing: %w", err)
	}

	a.printer = ux.NewPrinter(cmd.OutOrStdout())
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var firstErr error
	if a.shutdownTrace != nil {
		firstErr = a.shutdownTrace(ctx)
	}
	if err := a.audit.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (a *app) searchOptions() search.Options {
	return search.Options{
		Workers: a.cfg.Search.Workers,
		Logger:  a.logger,
		Audit:   a.audit,
		RunID:   uuid.NewString(),
	}
}
