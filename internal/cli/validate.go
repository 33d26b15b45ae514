package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ctrlgen/internal/compiler"
	"github.com/roach88/ctrlgen/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Catalog string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid               bool            `json:"valid"`
	Name                string          `json:"name"`
	Encoding            ir.EncodingType `json:"encoding"`
	Width               int             `json:"width"`
	Values              []string        `json:"values"`
	UnknownInstructions []string        `json:"unknown_instructions,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <definition>",
		Short: "Check a signal definition without saving it",
		Long: `Check a signal definition (.yaml, .yml, .cue or .json) without creating
a record or generating code.

The definition must name the signal, use a known encoding, and assign every
instruction to at most one value. With a catalog, instructions the catalog
does not know are reported as warnings.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Catalog, "catalog", "c", "", "flat catalog path (default catalog.path)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	s, err := startSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	def, err := compiler.LoadDefinitionFile(path)
	if err != nil {
		return s.out.Fail(err)
	}
	s.out.VerboseLog("Loaded definition %q from %s", def.Name, path)

	p := def.Partition(compiler.WithClock(s.now))
	sig, err := def.Commit(p)
	if err != nil {
		return s.out.Fail(err)
	}

	unknown, err := unknownInstructions(s, opts.Catalog, p)
	if err != nil {
		return s.out.Fail(err)
	}

	result := ValidationResult{
		Valid:               true,
		Name:                sig.Name,
		Encoding:            sig.EncodingType,
		Width:               sig.Width,
		Values:              sig.Values.Names(),
		UnknownInstructions: unknown,
	}
	warnings := unknownWarnings(unknown)

	if s.out.Format == "json" {
		return s.out.SuccessWithWarnings(result, warnings)
	}
	return s.out.SuccessWithWarnings(fmt.Sprintf("✓ %s is valid: %s, %s, width %d",
		sig.Name, sig.EncodingType, plural(len(sig.Values), "value", "values"), sig.Width), warnings)
}

// unknownInstructions returns the partition's instructions missing from the
// catalog. Without a catalog path or configured default the check is skipped.
func unknownInstructions(s *session, catalogPath string, p *compiler.Partition) ([]string, error) {
	if catalogPath == "" && s.cfg.Catalog.Path == "" {
		return nil, nil
	}
	cat, _, err := loadCatalog(s.cfg, catalogPath)
	if err != nil {
		return nil, err
	}
	return p.UnknownInstructions(cat), nil
}

func unknownWarnings(unknown []string) []string {
	if len(unknown) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("instructions not in catalog: %s", strings.Join(unknown, ", "))}
}
