package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/ctrlgen/internal/codegen"
)

// TemplateShowOptions holds flags for template show.
type TemplateShowOptions struct {
	*RootOptions
	Default bool
	Example bool
}

// TemplateInitOptions holds flags for template init.
type TemplateInitOptions struct {
	*RootOptions
	Force bool
}

// TemplateOutput is the JSON payload of template show.
type TemplateOutput struct {
	Artifact codegen.Artifact `json:"artifact"`
	Source   string           `json:"source"` // "config", "default" or "example"
	Template string           `json:"template"`
}

// TemplateInitResult is the JSON payload of template init.
type TemplateInitResult struct {
	Files []string `json:"files"`
}

// NewTemplateCommand creates the template command group.
func NewTemplateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Show or scaffold code templates",
		Long: `Show the Ctrl and Field templates in effect, the built-in defaults or the
commented examples, and scaffold template files to customize.

Templates use the placeholders {signal_name}, {encoding_type}, {signal_width},
{generation_time}, {values_list}, {methods_list} and {value_mappings}.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newTemplateShowCommand(rootOpts))
	cmd.AddCommand(newTemplateInitCommand(rootOpts))

	return cmd
}

func newTemplateShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TemplateShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "show <ctrl|field>",
		Short:         "Print a template",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplateShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Default, "default", false, "print the built-in default")
	cmd.Flags().BoolVar(&opts.Example, "example", false, "print the commented example")
	cmd.MarkFlagsMutuallyExclusive("default", "example")

	return cmd
}

func runTemplateShow(opts *TemplateShowOptions, name string, cmd *cobra.Command) error {
	s, err := startSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	a, err := codegen.ParseArtifact(name)
	if err != nil {
		return s.out.Fail(fmt.Errorf("%w: %w", errUsage, err))
	}

	var out TemplateOutput
	switch {
	case opts.Example:
		out = TemplateOutput{Artifact: a, Source: "example", Template: codegen.ExampleTemplate(a)}
	case opts.Default:
		out = TemplateOutput{Artifact: a, Source: "default", Template: codegen.DefaultTemplate(a)}
	default:
		r, err := newRenderer(s.cfg.Codegen)
		if err != nil {
			return s.out.Fail(err)
		}
		out = TemplateOutput{Artifact: a, Source: "config", Template: r.Template(a)}
		if out.Template == codegen.DefaultTemplate(a) {
			out.Source = "default"
		}
	}

	if s.out.Format == "json" {
		return s.out.Success(out)
	}
	s.out.VerboseLog("Template source: %s", out.Source)
	return s.out.Success(out.Template)
}

func newTemplateInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TemplateInitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init <dir>",
		Short: "Write the default templates to a directory",
		Long: `Write ctrl.scala.tmpl and field.scala.tmpl with the built-in default
templates. Point codegen.ctrl_template_file and codegen.field_template_file
at them to use edited copies.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplateInit(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite existing files")

	return cmd
}

// TemplateFileName returns the scaffolded file name for a.
func TemplateFileName(a codegen.Artifact) string {
	return string(a) + ".scala.tmpl"
}

func runTemplateInit(opts *TemplateInitOptions, dir string, cmd *cobra.Command) error {
	s, err := startSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return s.out.Fail(fmt.Errorf("failed to create %s: %w", dir, err))
	}

	arts := codegen.Artifacts
	paths := make([]string, 0, len(arts))
	for _, a := range arts {
		path := filepath.Join(dir, TemplateFileName(a))
		if !opts.Force {
			if _, err := os.Stat(path); err == nil {
				return s.out.Fail(fmt.Errorf("%w: %s exists (use --force to overwrite)", errUsage, path))
			} else if !errors.Is(err, os.ErrNotExist) {
				return s.out.Fail(err)
			}
		}
		paths = append(paths, path)
	}

	for i, a := range arts {
		if err := os.WriteFile(paths[i], []byte(codegen.DefaultTemplate(a)), 0o644); err != nil {
			return s.out.Fail(fmt.Errorf("failed to write %s: %w", paths[i], err))
		}
		s.logger.Debug("template written", zap.String("path", paths[i]))
	}

	if s.out.Format == "json" {
		return s.out.Success(TemplateInitResult{Files: paths})
	}
	msg := fmt.Sprintf("✓ Wrote %s", plural(len(paths), "template", "templates"))
	for _, p := range paths {
		msg += "\n  " + p
	}
	return s.out.Success(msg)
}
