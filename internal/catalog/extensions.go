package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// FilterReport describes what an extension filter did.
type FilterReport struct {
	Requested []string // tags asked for, deduplicated and sorted
	Unknown   []string // requested tags no instruction carries
	Applied   []string // requested tags that were used
	Before    int
	After     int
}

// Removed returns how many instructions the filter dropped.
func (r FilterReport) Removed() int {
	return r.Before - r.After
}

// ParseExtensionList splits a comma-separated tag list, trimming space and
// dropping empty items.
func ParseExtensionList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// FilterByExtensions keeps the instructions whose extension tags intersect
// allow. Tags absent from instrs are reported and ignored; if none remain the
// filter fails with ErrNoMatchingExtensions.
func FilterByExtensions(instrs []Instruction, allow []string) ([]Instruction, FilterReport, error) {
	known := make(map[string]bool)
	for _, ext := range Extensions(instrs) {
		known[ext] = true
	}

	requested := make(map[string]bool)
	for _, tag := range allow {
		requested[tag] = true
	}

	report := FilterReport{Before: len(instrs)}
	applied := make(map[string]bool)
	for tag := range requested {
		report.Requested = append(report.Requested, tag)
		if known[tag] {
			applied[tag] = true
			report.Applied = append(report.Applied, tag)
		} else {
			report.Unknown = append(report.Unknown, tag)
		}
	}
	sort.Strings(report.Requested)
	sort.Strings(report.Applied)
	sort.Strings(report.Unknown)

	if len(applied) == 0 {
		return nil, report, fmt.Errorf("%w: none of %s is known (available: %s)",
			ErrNoMatchingExtensions, strings.Join(report.Requested, ", "), strings.Join(Extensions(instrs), ", "))
	}

	var kept []Instruction
	for _, inst := range instrs {
		for _, ext := range inst.Extensions() {
			if applied[ext] {
				kept = append(kept, inst)
				break
			}
		}
	}
	report.After = len(kept)
	return kept, report, nil
}
