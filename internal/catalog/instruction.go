package catalog

import (
	"fmt"
	"strings"
	"unicode"
)

// Instruction is one catalog entry. Instructions are immutable once parsed.
type Instruction struct {
	Name      string   `json:"name"`
	Extension string   `json:"extension"` // space-joined extension tags
	Encoding  string   `json:"encoding"`  // over {0,1,?}
	Args      []string `json:"args"`
}

// Extensions returns the instruction's individual extension tags.
func (i Instruction) Extensions() []string {
	return strings.Fields(i.Extension)
}

// HasExtension reports whether tag is one of the instruction's extension tags.
func (i Instruction) HasExtension(tag string) bool {
	for _, ext := range i.Extensions() {
		if ext == tag {
			return true
		}
	}
	return false
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s (%s): %s", i.Name, i.Extension, i.Encoding)
}

// Record renders the instruction as one flat catalog line (without newline).
// An empty extension is omitted; Parse recognizes the encoding in its place.
func (i Instruction) Record() string {
	fields := []string{i.Name, i.Extension, i.Encoding}
	fields = append(fields, i.Args...)
	nonEmpty := fields[:0]
	for _, f := range fields {
		if f != "" {
			nonEmpty = append(nonEmpty, f)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// checkRecord reports whether Record would not read back through Parse.
func (i Instruction) checkRecord() error {
	switch {
	case i.Name == "" || strings.ContainsFunc(i.Name, unicode.IsSpace):
		return &UnwritableInstructionError{Name: i.Name, Reason: "name must be a single non-empty token"}
	case !isCanonicalEncoding(i.Encoding):
		return &UnwritableInstructionError{Name: i.Name, Reason: fmt.Sprintf("encoding %q is not over {0,1,?}", i.Encoding)}
	}
	for _, ext := range i.Extensions() {
		if isCanonicalEncoding(ext) {
			return &UnwritableInstructionError{Name: i.Name, Reason: fmt.Sprintf("extension tag %q reads as an encoding", ext)}
		}
	}
	for _, arg := range i.Args {
		if arg == "" || strings.ContainsFunc(arg, unicode.IsSpace) {
			return &UnwritableInstructionError{Name: i.Name, Reason: fmt.Sprintf("argument %q must be a single non-empty token", arg)}
		}
	}
	return nil
}
