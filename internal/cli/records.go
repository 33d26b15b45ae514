package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/ctrlgen/internal/compiler"
	"github.com/roach88/ctrlgen/internal/ir"
	"github.com/roach88/ctrlgen/internal/store"
)

// RecordSummary is one row of the records list.
type RecordSummary struct {
	SignalID     string          `json:"signal_id"`
	Name         string          `json:"name"`
	EncodingType ir.EncodingType `json:"encoding_type"`
	Width        int             `json:"width"`
	Values       int             `json:"values"`
	CreatedAt    string          `json:"created_at"`
}

// DeleteResult is the JSON payload of records delete.
type DeleteResult struct {
	SignalID string `json:"signal_id"`
	Deleted  bool   `json:"deleted"`
}

// ExportResult is the JSON payload of records export.
type ExportResult struct {
	SignalID   string `json:"signal_id"`
	Path       string `json:"path,omitempty"`
	Definition string `json:"definition"`
}

// NewRecordsCommand creates the records command group.
func NewRecordsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and manage committed signals",
		Long: `Inspect and manage the committed signals in the record store
(store.driver at store.path).`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newRecordsListCommand(rootOpts))
	cmd.AddCommand(newRecordsShowCommand(rootOpts))
	cmd.AddCommand(newRecordsDeleteCommand(rootOpts))
	cmd.AddCommand(newRecordsExportCommand(rootOpts))

	return cmd
}

func newRecordsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List records, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsList(rootOpts, cmd)
		},
	}
}

func runRecordsList(opts *RootOptions, cmd *cobra.Command) error {
	s, err := startSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	st, err := s.openStore()
	if err != nil {
		return s.out.Fail(err)
	}
	defer st.Close()

	var warnings []string
	recs, err := st.List(storeContext(cmd))
	if store.Degraded(err) {
		// An unreadable store lists as empty; writes stay refused.
		warnings = append(warnings, err.Error())
	} else if err != nil {
		return s.out.Fail(err)
	}

	summaries := make([]RecordSummary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, RecordSummary{
			SignalID:     rec.SignalID,
			Name:         rec.Name,
			EncodingType: rec.EncodingType,
			Width:        rec.Width,
			Values:       len(rec.Values),
			CreatedAt:    rec.CreatedAt,
		})
	}

	if s.out.Format == "json" {
		return s.out.SuccessWithWarnings(summaries, warnings)
	}
	if len(summaries) == 0 {
		return s.out.SuccessWithWarnings("No records", warnings)
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIGNAL ID\tNAME\tENCODING\tWIDTH\tVALUES\tCREATED")
	for _, r := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.SignalID, r.Name, r.EncodingType, r.Width, r.Values, r.CreatedAt)
	}
	tw.Flush()
	return s.out.SuccessWithWarnings(strings.TrimSuffix(buf.String(), "\n"), warnings)
}

func newRecordsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <signal_id>",
		Short:         "Show one record",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsShow(rootOpts, args[0], cmd)
		},
	}
}

func runRecordsShow(opts *RootOptions, signalID string, cmd *cobra.Command) error {
	s, err := startSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	st, err := s.openStore()
	if err != nil {
		return s.out.Fail(err)
	}
	defer st.Close()

	sig, err := store.Find(storeContext(cmd), st, signalID)
	if err != nil {
		return s.out.Fail(err)
	}

	if s.out.Format == "json" {
		return s.out.Success(sig)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Signal:   %s\n", sig.Name)
	fmt.Fprintf(&b, "ID:       %s\n", sig.SignalID)
	fmt.Fprintf(&b, "Encoding: %s (width %d)\n", sig.EncodingType, sig.Width)
	fmt.Fprintf(&b, "Created:  %s\n", sig.CreatedAt)
	b.WriteString("Values:")
	for _, v := range sig.Values {
		if len(v.Instructions) == 0 {
			fmt.Fprintf(&b, "\n  %s: (none)", v.Name)
			continue
		}
		fmt.Fprintf(&b, "\n  %s: %s", v.Name, strings.Join(v.Instructions, ", "))
	}
	return s.out.Success(b.String())
}

func newRecordsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <signal_id>",
		Short:         "Delete a record",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsDelete(rootOpts, args[0], cmd)
		},
	}
}

func runRecordsDelete(opts *RootOptions, signalID string, cmd *cobra.Command) error {
	s, err := startSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	st, err := s.openStore()
	if err != nil {
		return s.out.Fail(err)
	}
	defer st.Close()

	removed, err := st.Delete(storeContext(cmd), signalID)
	if err != nil {
		return s.out.Fail(err)
	}
	if !removed {
		return s.out.Fail(fmt.Errorf("%w: %s", store.ErrNotFound, signalID))
	}
	s.logger.Info("record deleted", zap.String("signal_id", signalID))

	if s.out.Format == "json" {
		return s.out.Success(DeleteResult{SignalID: signalID, Deleted: true})
	}
	return s.out.Success(fmt.Sprintf("✓ Deleted %s", signalID))
}

// RecordsExportOptions holds flags for records export.
type RecordsExportOptions struct {
	*RootOptions
	Output string
}

func newRecordsExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordsExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <signal_id>",
		Short: "Export a record as a YAML definition",
		Long: `Export a record as a YAML signal definition that compile and validate
accept, so a committed signal can be edited and recompiled.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func runRecordsExport(opts *RecordsExportOptions, signalID string, cmd *cobra.Command) error {
	s, err := startSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	st, err := s.openStore()
	if err != nil {
		return s.out.Fail(err)
	}
	defer st.Close()

	sig, err := store.Find(storeContext(cmd), st, signalID)
	if err != nil {
		return s.out.Fail(err)
	}

	doc, err := compiler.DefinitionFromSignal(sig).MarshalYAMLDocument()
	if err != nil {
		return s.out.Fail(err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, doc, 0o644); err != nil {
			return s.out.Fail(fmt.Errorf("failed to write %s: %w", opts.Output, err))
		}
		s.logger.Info("record exported", zap.String("signal_id", signalID), zap.String("path", opts.Output))
	}

	if s.out.Format == "json" {
		return s.out.Success(ExportResult{SignalID: signalID, Path: opts.Output, Definition: string(doc)})
	}
	if opts.Output != "" {
		return s.out.Success(fmt.Sprintf("✓ Exported %s to %s", signalID, opts.Output))
	}
	return s.out.Success(strings.TrimSuffix(string(doc), "\n"))
}
