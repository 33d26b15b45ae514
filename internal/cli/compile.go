package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/ctrlgen/internal/codegen"
	"github.com/roach88/ctrlgen/internal/compiler"
	"github.com/roach88/ctrlgen/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Catalog  string
	NoSave   bool
	SaveCode bool
	Artifact string
}

// CompilationResult is the JSON payload of the compile command.
type CompilationResult struct {
	Signal              ir.ControlSignal `json:"signal"`
	Saved               bool             `json:"saved"`
	UnknownInstructions []string         `json:"unknown_instructions,omitempty"`
	Artifacts           []ArtifactOutput `json:"artifacts"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <definition>",
		Short: "Compile a signal definition into a record and Chisel code",
		Long: `Compile a signal definition (.yaml, .yml, .cue or .json) into a control
signal record and render its Ctrl and Field objects.

The record is appended to the record store unless --no-save is given or
store.auto_save is false. With --save-code the generated code is written to
codegen.output_dir.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Catalog, "catalog", "c", "", "flat catalog used to flag unknown instructions")
	cmd.Flags().BoolVar(&opts.NoSave, "no-save", false, "do not append the record to the store")
	cmd.Flags().BoolVar(&opts.SaveCode, "save-code", false, "write the generated code to codegen.output_dir")
	cmd.Flags().StringVar(&opts.Artifact, "artifact", "both", "artifacts to render (ctrl|field|both)")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	s, err := startSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	arts, err := codegen.ParseArtifacts(opts.Artifact)
	if err != nil {
		return s.out.Fail(fmt.Errorf("%w: %w", errUsage, err))
	}

	def, err := compiler.LoadDefinitionFile(path)
	if err != nil {
		return s.out.Fail(err)
	}
	s.out.VerboseLog("Compiling %q from %s", def.Name, path)

	p := def.Partition(compiler.WithClock(s.now))
	sig, err := def.Commit(p)
	if err != nil {
		s.logger.Debug("commit rejected", zap.String("name", def.Name), zap.Error(err))
		return s.out.Fail(err)
	}

	unknown, err := unknownInstructions(s, opts.Catalog, p)
	if err != nil {
		return s.out.Fail(err)
	}

	saved := false
	if s.cfg.Store.AutoSave && !opts.NoSave {
		st, err := s.openStore()
		if err != nil {
			return s.out.Fail(err)
		}
		defer st.Close()

		if err := st.Append(storeContext(cmd), sig); err != nil {
			return s.out.Fail(err)
		}
		saved = true
		s.logger.Info("signal committed",
			zap.String("signal_id", sig.SignalID),
			zap.String("name", sig.Name),
			zap.Int("values", len(sig.Values)),
			zap.Int("width", sig.Width))
	}

	outputs, err := renderArtifacts(s, sig, arts, opts.SaveCode)
	if err != nil {
		return s.out.Fail(err)
	}

	warnings := unknownWarnings(unknown)
	if s.out.Format == "json" {
		return s.out.SuccessWithWarnings(CompilationResult{
			Signal:              sig,
			Saved:               saved,
			UnknownInstructions: unknown,
			Artifacts:           outputs,
		}, warnings)
	}

	lines := []string{
		fmt.Sprintf("✓ Compiled %s: %s, %s, width %d",
			sig.Name, sig.EncodingType, plural(len(sig.Values), "value", "values"), sig.Width),
		fmt.Sprintf("Signal ID: %s", sig.SignalID),
	}
	if saved {
		lines = append(lines, "Saved to record store")
	}
	lines = append(lines, "", formatArtifacts(outputs))
	return s.out.SuccessWithWarnings(strings.Join(lines, "\n"), warnings)
}
