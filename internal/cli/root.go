package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/ctrlgen/internal/config"
	"github.com/roach88/ctrlgen/internal/logging"
	"github.com/roach88/ctrlgen/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Now is the wall clock for signal IDs, timestamps and file names.
	// Nil means time.Now.
	Now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ctrlgen CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ctrlgen",
		Short: "Control-signal definition compiler",
		Long: `ctrlgen partitions RISC-V instructions into the values of a decoder
control signal and generates Chisel Ctrl and Field objects for it.

Instruction catalogs are flat, space-separated files; the convert command
produces one from a structured instruction database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags. --verbose has no shorthand: convert uses -v for --validate.
	cmd.PersistentFlags().BoolVar(&opts.Verbose, "verbose", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.DefaultPath()+")")

	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewRecordsCommand(opts))
	cmd.AddCommand(NewTemplateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// session carries what one command run needs: configuration, a logger
// tagged with the run ID, and the output formatter.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	out    *OutputFormatter
	now    func() time.Time
}

// startSession loads configuration and builds the logger. Failures are
// reported through the formatter; the returned error is ready to return
// from RunE.
func startSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	format := opts.Format
	if format == "" {
		format = "text"
	}
	out := &OutputFormatter{
		Format:    format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, out.Fail(err)
	}
	out.RunID = runID.String()

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, out.Fail(fmt.Errorf("%w: %w", errInvalidConfig, err))
	}

	logger, err := logging.New(cfg.Logging, opts.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return nil, out.Fail(fmt.Errorf("%w: %w", errInvalidConfig, err))
	}
	logger = logger.With(
		zap.String("run_id", out.RunID),
		zap.String("command", cmd.Name()),
	)
	logger.Debug("config loaded", zap.String("path", path))

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &session{cfg: cfg, logger: logger, out: out, now: now}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

// openStore opens the configured record store.
func (s *session) openStore() (store.Store, error) {
	st, err := store.Open(s.cfg.Store.Driver, s.cfg.Store.Path, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("store opened",
		zap.String("driver", s.cfg.Store.Driver),
		zap.String("path", s.cfg.Store.Path))
	return st, nil
}
