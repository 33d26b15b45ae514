package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/ctrlgen/internal/codegen"
	"github.com/roach88/ctrlgen/internal/ir"
	"github.com/roach88/ctrlgen/internal/store"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Artifact string
	SaveCode bool
}

// ArtifactOutput is one generated source file.
type ArtifactOutput struct {
	Artifact codegen.Artifact `json:"artifact"`
	Code     string           `json:"code"`
	Path     string           `json:"path,omitempty"`
}

// RenderResult is the JSON payload of the render command.
type RenderResult struct {
	Signal    ir.ControlSignal `json:"signal"`
	Artifacts []ArtifactOutput `json:"artifacts"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <signal_id>",
		Short: "Regenerate code for a stored signal",
		Long: `Regenerate the Ctrl and Field code of a record in the store using the
current templates. The record is not modified.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Artifact, "artifact", "both", "artifacts to render (ctrl|field|both)")
	cmd.Flags().BoolVar(&opts.SaveCode, "save-code", false, "write the generated code to codegen.output_dir")

	return cmd
}

func runRender(opts *RenderOptions, signalID string, cmd *cobra.Command) error {
	s, err := startSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	arts, err := codegen.ParseArtifacts(opts.Artifact)
	if err != nil {
		return s.out.Fail(fmt.Errorf("%w: %w", errUsage, err))
	}

	st, err := s.openStore()
	if err != nil {
		return s.out.Fail(err)
	}
	defer st.Close()

	sig, err := store.Find(storeContext(cmd), st, signalID)
	if err != nil {
		return s.out.Fail(err)
	}

	outputs, err := renderArtifacts(s, sig, arts, opts.SaveCode)
	if err != nil {
		return s.out.Fail(err)
	}

	if s.out.Format == "json" {
		return s.out.Success(RenderResult{Signal: sig, Artifacts: outputs})
	}
	return s.out.Success(formatArtifacts(outputs))
}

// renderArtifacts renders sig with the configured templates and optionally
// writes each artifact to the output directory.
func renderArtifacts(s *session, sig ir.ControlSignal, arts []codegen.Artifact, save bool) ([]ArtifactOutput, error) {
	r, err := newRenderer(s.cfg.Codegen, codegen.WithClock(s.now))
	if err != nil {
		return nil, err
	}

	var w *codegen.Writer
	if save {
		w = codegen.NewWriter(s.cfg.Codegen.OutputDir, s.now)
	}

	outputs := make([]ArtifactOutput, 0, len(arts))
	for _, a := range arts {
		code, err := r.Render(sig, a)
		if err != nil {
			return nil, err
		}
		out := ArtifactOutput{Artifact: a, Code: code}
		if w != nil {
			path, err := w.Write(sig, a, code)
			if err != nil {
				return nil, err
			}
			out.Path = path
			s.logger.Info("artifact written",
				zap.String("signal_id", sig.SignalID),
				zap.String("artifact", string(a)),
				zap.String("path", path))
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func formatArtifacts(outputs []ArtifactOutput) string {
	var b strings.Builder
	for i, out := range outputs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "// ---- %s ----\n%s\n", out.Artifact, out.Code)
		if out.Path != "" {
			fmt.Fprintf(&b, "Wrote %s\n", out.Path)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// storeContext returns the command context, or Background when the command
// runs without one.
func storeContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
