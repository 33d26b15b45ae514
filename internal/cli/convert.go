package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/ctrlgen/internal/catalog"
)

// maxShownIssues bounds how many validation issues text output lists.
const maxShownIssues = 5

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Input          string
	Output         string
	Extensions     string
	ListExtensions bool
	Validate       bool
}

// ConvertResult is the JSON payload of a successful conversion.
type ConvertResult struct {
	Input  string         `json:"input"`
	Output string         `json:"output"`
	Count  int            `json:"count"`
	Filter *FilterSummary `json:"filter,omitempty"`
}

// FilterSummary reports what an extension filter kept.
type FilterSummary struct {
	Applied []string `json:"applied"`
	Unknown []string `json:"unknown,omitempty"`
	Before  int      `json:"before"`
	After   int      `json:"after"`
	Removed int      `json:"removed"`
}

// ExtensionList is the JSON payload of convert --list-extensions.
type ExtensionList struct {
	Extensions []string `json:"extensions"`
	Total      int      `json:"total"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an instruction database into a flat catalog",
		Long: `Convert a structured RISC-V instruction database (a JSON object keyed by
instruction name) into the flat catalog format: one instruction per line,
"name extension encoding args...", no header.

Encodings are normalized to a string over {0,1,?}. Entries without an
encoding are skipped.`,
		Example: `  ctrlgen convert -i instr_dict.json -o riscv_instructions.csv
  ctrlgen convert -i instr_dict.json -e "rv_i, rv64_i" -v
  ctrlgen convert -i instr_dict.json -l`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "instruction database JSON (required)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "riscv_instructions.csv", "flat catalog output path")
	cmd.Flags().StringVarP(&opts.Extensions, "extensions", "e", "", "keep only these extensions (comma separated)")
	cmd.Flags().BoolVarP(&opts.ListExtensions, "list-extensions", "l", false, "list the extensions in the database and exit")
	cmd.Flags().BoolVarP(&opts.Validate, "validate", "v", false, "check that every encoding is 32 bits over {0,1,?}")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runConvert(opts *ConvertOptions, cmd *cobra.Command) error {
	s, err := startSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	instrs, err := catalog.ImportDatabaseFile(opts.Input)
	if err != nil {
		return s.out.Fail(err)
	}
	if len(instrs) == 0 {
		return s.out.Fail(fmt.Errorf("%w in %s", errNoInstructions, opts.Input))
	}
	s.logger.Debug("database imported",
		zap.String("input", opts.Input),
		zap.Int("instructions", len(instrs)))

	if opts.ListExtensions {
		return outputExtensionList(s.out, catalog.Extensions(instrs))
	}

	var (
		lines    []string
		warnings []string
		summary  *FilterSummary
	)
	if opts.Extensions != "" {
		tags := catalog.ParseExtensionList(opts.Extensions)
		if len(tags) == 0 {
			return s.out.Fail(fmt.Errorf("%w: no valid extension in %q", errUsage, opts.Extensions))
		}

		filtered, report, err := catalog.FilterByExtensions(instrs, tags)
		if len(report.Unknown) > 0 {
			warnings = append(warnings, fmt.Sprintf("unknown extensions ignored: %s", strings.Join(report.Unknown, ", ")))
		}
		if err != nil {
			for _, w := range warnings {
				s.out.Warn(w)
			}
			return s.out.Fail(err)
		}
		instrs = filtered

		summary = &FilterSummary{
			Applied: report.Applied,
			Unknown: report.Unknown,
			Before:  report.Before,
			After:   report.After,
			Removed: report.Removed(),
		}
		s.logger.Debug("extension filter applied",
			zap.Strings("applied", report.Applied),
			zap.Int("before", report.Before),
			zap.Int("after", report.After))
		lines = append(lines,
			fmt.Sprintf("Filtered extensions: %s", strings.Join(report.Applied, ", ")),
			fmt.Sprintf("Before: %s", plural(report.Before, "instruction", "instructions")),
			fmt.Sprintf("After: %s (%d removed)", plural(report.After, "instruction", "instructions"), report.Removed()),
		)
	} else {
		lines = append(lines, fmt.Sprintf("Found %s (unfiltered)", plural(len(instrs), "instruction", "instructions")))
	}

	if opts.Validate {
		if issues := catalog.Validate(instrs); len(issues) > 0 {
			for _, w := range warnings {
				s.out.Warn(w)
			}
			return outputIssues(s.out, issues)
		}
	}

	if err := catalog.WriteFlatFile(opts.Output, instrs); err != nil {
		return s.out.Fail(fmt.Errorf("write %s: %w", opts.Output, err))
	}
	s.logger.Info("catalog written",
		zap.String("output", opts.Output),
		zap.Int("instructions", len(instrs)))

	if s.out.Format == "json" {
		return s.out.SuccessWithWarnings(ConvertResult{
			Input:  opts.Input,
			Output: opts.Output,
			Count:  len(instrs),
			Filter: summary,
		}, warnings)
	}
	lines = append(lines,
		fmt.Sprintf("✓ Wrote %s", opts.Output),
		fmt.Sprintf("Contains %s", plural(len(instrs), "instruction", "instructions")),
	)
	return s.out.SuccessWithWarnings(strings.Join(lines, "\n"), warnings)
}

func outputExtensionList(out *OutputFormatter, exts []string) error {
	if out.Format == "json" {
		return out.Success(ExtensionList{Extensions: exts, Total: len(exts)})
	}
	if len(exts) == 0 {
		return out.Success("No extensions found")
	}
	return out.Success(fmt.Sprintf("Available extensions:\n%s\nTotal: %s",
		indent(exts), plural(len(exts), "extension", "extensions")))
}

// outputIssues reports encoding validation failures.
func outputIssues(out *OutputFormatter, issues []catalog.Issue) error {
	summary := fmt.Sprintf("validation found %s", plural(len(issues), "issue", "issues"))
	if out.Format == "json" {
		_ = out.Error(ErrCodeInvalidEncodings, summary, issues)
	} else {
		_ = out.Error(ErrCodeInvalidEncodings, summary+":\n"+indent(formatIssues(issues, maxShownIssues)), nil)
	}
	return WrapExitError(ExitFailure, ErrCodeInvalidEncodings, errInvalidCatalog)
}
