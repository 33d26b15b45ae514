package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedCatalogRow marks a flat catalog line without a name and encoding.
	ErrMalformedCatalogRow = errors.New("malformed catalog row")

	// ErrNoMatchingExtensions means an extension filter kept no known tag.
	ErrNoMatchingExtensions = errors.New("no matching extensions")

	// ErrInvalidDatabase means the structured instruction database is not a JSON object.
	ErrInvalidDatabase = errors.New("invalid instruction database")

	// ErrUnwritableInstruction means an instruction has no unambiguous flat catalog line.
	ErrUnwritableInstruction = errors.New("unwritable instruction")
)

// MalformedRowError identifies the offending line of a flat catalog.
type MalformedRowError struct {
	Line int    // 1-based line number
	Text string // raw line content
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%v at line %d: need name, optional extension, encoding, got %q",
		ErrMalformedCatalogRow, e.Line, e.Text)
}

func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedCatalogRow
}

// UnwritableInstructionError names the instruction WriteFlat refused.
type UnwritableInstructionError struct {
	Name   string
	Reason string
}

func (e *UnwritableInstructionError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrUnwritableInstruction, e.Name, e.Reason)
}

func (e *UnwritableInstructionError) Is(target error) bool {
	return target == ErrUnwritableInstruction
}
