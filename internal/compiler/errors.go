package compiler

import (
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/token"
)

var (
	ErrMissingSignalName              = errors.New("missing signal name")
	ErrEmptyConfiguration             = errors.New("empty configuration")
	ErrDuplicateInstructionAssignment = errors.New("duplicate instruction assignment")
	ErrDuplicateValueName             = errors.New("duplicate value name")
	ErrInvalidEncoding                = errors.New("invalid encoding type")
	ErrInvalidDefinition              = errors.New("invalid signal definition")
)

// Compile error codes (E200-E299).
const (
	CodeMissingSignalName              = "E201"
	CodeEmptyConfiguration             = "E202"
	CodeDuplicateInstructionAssignment = "E203"
	CodeDuplicateValueName             = "E204"
	CodeInvalidEncoding                = "E205"
	CodeInvalidDefinition              = "E206"
)

// CompileError describes why a partition or definition could not be compiled.
type CompileError struct {
	Code         string
	Field        string
	Message      string
	Instructions []string  // offending instruction names, sorted
	Values       []string  // offending value names
	Pos          token.Pos // definition source position, if known
	Err          error     // sentinel for errors.Is
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

func duplicateAssignmentError(conflicts map[string][]string, instructions []string) *CompileError {
	parts := make([]string, len(instructions))
	for i, inst := range instructions {
		parts[i] = fmt.Sprintf("%s (%s)", inst, strings.Join(conflicts[inst], ", "))
	}
	return &CompileError{
		Code:         CodeDuplicateInstructionAssignment,
		Field:        "values",
		Message:      "instructions assigned to more than one value: " + strings.Join(parts, "; "),
		Instructions: instructions,
		Err:          ErrDuplicateInstructionAssignment,
	}
}
