package cli

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/ctrlgen/internal/catalog"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	Catalog    string
	Search     string
	Extensions string
}

// CatalogListing is the JSON payload of the catalog command.
type CatalogListing struct {
	Path         string                `json:"path"`
	Total        int                   `json:"total"`
	Extensions   []string              `json:"extensions"`
	Instructions []catalog.Instruction `json:"instructions"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the instructions of a flat catalog",
		Long: `List the instructions of a flat catalog, optionally narrowed by a
case-insensitive search over name, extensions, encoding and arguments, or by
extension tags.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Catalog, "catalog", "c", "", "flat catalog path (default catalog.path)")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "case-insensitive substring filter")
	cmd.Flags().StringVarP(&opts.Extensions, "extensions", "e", "", "keep only these extensions (comma separated)")

	return cmd
}

func runCatalog(opts *CatalogOptions, cmd *cobra.Command) error {
	s, err := startSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	cat, path, err := loadCatalog(s.cfg, opts.Catalog)
	if err != nil {
		return s.out.Fail(err)
	}
	s.logger.Debug("catalog loaded", zap.String("path", path), zap.Int("instructions", cat.Len()))

	instrs := cat.Instructions()
	if opts.Search != "" {
		instrs = cat.Search(opts.Search)
	}

	var warnings []string
	if opts.Extensions != "" {
		filtered, report, err := catalog.FilterByExtensions(instrs, catalog.ParseExtensionList(opts.Extensions))
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
	}

	if s.out.Format == "json" {
		if instrs == nil {
			instrs = []catalog.Instruction{}
		}
		return s.out.SuccessWithWarnings(CatalogListing{
			Path:         path,
			Total:        len(instrs),
			Extensions:   catalog.Extensions(instrs),
			Instructions: instrs,
		}, warnings)
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, inst := range instrs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", inst.Name, inst.Extension, inst.Encoding, strings.Join(inst.Args, " "))
	}
	tw.Flush()
	fmt.Fprintf(&buf, "%s, %s",
		plural(len(instrs), "instruction", "instructions"),
		plural(len(catalog.Extensions(instrs)), "extension", "extensions"))
	return s.out.SuccessWithWarnings(buf.String(), warnings)
}
