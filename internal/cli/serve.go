package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/registrar/internal/registrar"
	"github.com/roach88/registrar/internal/server"
	"github.com/roach88/registrar/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the registrar server",
		Long: `Start the course registration server.

The server opens a SQLite database (creating it, and a default admin
account, if needed) and accepts client connections on a TCP address.
Address and database default from REGISTRAR_ADDR and REGISTRAR_DB;
flags override the environment.

Example:
  registrar serve --addr :7070 --db ./registrar.db
  REGISTRAR_DB=/var/lib/registrar.db registrar serve --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "TCP listen address (overrides REGISTRAR_ADDR)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides REGISTRAR_DB)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	cfg, err := server.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}

	slog.Info("opening database", "path", cfg.DBPath)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database ready")

	eng := registrar.New(st)
	srv := server.New(cfg, eng)

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := srv.ListenAndServe(ctx); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
