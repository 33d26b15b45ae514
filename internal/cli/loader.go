package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/ctrlgen/internal/catalog"
	"github.com/roach88/ctrlgen/internal/codegen"
	"github.com/roach88/ctrlgen/internal/compiler"
	"github.com/roach88/ctrlgen/internal/config"
	"github.com/roach88/ctrlgen/internal/store"
)

// Input and I/O error codes (E001-E099).
const (
	ErrCodeGeneric          = "E001" // Generic/unknown error
	ErrCodeMalformedCatalog = "E002" // Flat catalog row with too few fields
	ErrCodeNoExtensions     = "E003" // Extension filter matched nothing
	ErrCodeInvalidDatabase  = "E004" // Instruction database is not a JSON object
	ErrCodeNotFound         = "E005" // Path not found
	ErrCodeInvalidConfig    = "E006" // Config file unreadable or invalid
	ErrCodeWriteFailed      = "E007" // File write error
	ErrCodePermission       = "E008" // Write refused by the filesystem
	ErrCodeRecordNotFound   = "E009" // No record with the given signal_id
	ErrCodeCorruptStore     = "E010" // Record store cannot be decoded
	ErrCodeUsage            = "E011" // Invalid flag or argument value
	ErrCodeNoInstructions   = "E012" // Input held no usable instruction
)

// Semantic error codes (E200-E299) come from compiler.CompileError.Code,
// except the ones the CLI raises itself.
const (
	ErrCodeInvalidEncodings = "E210" // Catalog encodings fail 32-bit validation
)

var (
	errUsage          = errors.New("invalid usage")
	errNoInstructions = errors.New("no valid instructions found")
	errInvalidConfig  = errors.New("invalid configuration")
	errInvalidCatalog = errors.New("catalog encodings failed validation")
)

// classifyError maps an error to its code and exit status. Semantic
// violations exit with ExitFailure; input and I/O problems with
// ExitCommandError.
func classifyError(err error) (code string, exit int) {
	var compileErr *compiler.CompileError
	switch {
	case errors.As(err, &compileErr):
		if compileErr.Code == compiler.CodeInvalidDefinition {
			return compileErr.Code, ExitCommandError
		}
		return compileErr.Code, ExitFailure
	case errors.Is(err, errInvalidCatalog):
		return ErrCodeInvalidEncodings, ExitFailure
	case errors.Is(err, errUsage):
		return ErrCodeUsage, ExitCommandError
	case errors.Is(err, errInvalidConfig):
		return ErrCodeInvalidConfig, ExitCommandError
	case errors.Is(err, errNoInstructions):
		return ErrCodeNoInstructions, ExitCommandError
	case errors.Is(err, catalog.ErrMalformedCatalogRow):
		return ErrCodeMalformedCatalog, ExitCommandError
	case errors.Is(err, catalog.ErrNoMatchingExtensions):
		return ErrCodeNoExtensions, ExitCommandError
	case errors.Is(err, catalog.ErrInvalidDatabase), errors.Is(err, catalog.ErrUnwritableInstruction):
		return ErrCodeInvalidDatabase, ExitCommandError
	case errors.Is(err, store.ErrPermissionDenied), errors.Is(err, codegen.ErrPermissionDenied),
		errors.Is(err, os.ErrPermission):
		return ErrCodePermission, ExitCommandError
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeRecordNotFound, ExitCommandError
	case errors.Is(err, store.ErrCorruptStore):
		return ErrCodeCorruptStore, ExitCommandError
	case errors.Is(err, os.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError
	default:
		return ErrCodeGeneric, ExitCommandError
	}
}

func errorMessage(code string, err error) string {
	msg := err.Error()
	if code == ErrCodePermission {
		msg += " (check the directory permissions or rerun with elevated privileges)"
	}
	return msg
}

// errorDetails exposes structured fields of known error types.
func errorDetails(err error) interface{} {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		details := map[string]interface{}{"field": compileErr.Field}
		if len(compileErr.Instructions) > 0 {
			details["instructions"] = compileErr.Instructions
		}
		if len(compileErr.Values) > 0 {
			details["values"] = compileErr.Values
		}
		if compileErr.Pos.IsValid() {
			details["position"] = fmt.Sprintf("%s:%d:%d",
				compileErr.Pos.Filename(), compileErr.Pos.Line(), compileErr.Pos.Column())
		}
		return details
	}
	var rowErr *catalog.MalformedRowError
	if errors.As(err, &rowErr) {
		return map[string]interface{}{"line": rowErr.Line, "text": rowErr.Text}
	}
	return nil
}

// loadCatalog loads the flat catalog at path, falling back to the
// configured default.
func loadCatalog(cfg *config.Config, path string) (*catalog.Catalog, string, error) {
	if path == "" {
		path = cfg.Catalog.Path
	}
	if path == "" {
		return nil, "", fmt.Errorf("%w: no catalog given (use --catalog or set catalog.path)", errUsage)
	}
	cat := catalog.New(nil)
	if err := cat.LoadFile(path); err != nil {
		return nil, path, err
	}
	return cat, path, nil
}

// newRenderer builds a renderer from the codegen section.
func newRenderer(cfg config.CodegenConfig, opts ...codegen.Option) (*codegen.Renderer, error) {
	ctrl, field, err := cfg.LoadTemplates()
	if err != nil {
		return nil, err
	}
	return codegen.NewRenderer(append([]codegen.Option{
		codegen.WithTemplates(codegen.Templates{Ctrl: ctrl, Field: field}),
		codegen.WithAutoFormat(cfg.AutoFormat),
	}, opts...)...), nil
}

// formatIssues renders at most limit issues followed by a remainder line.
func formatIssues(issues []catalog.Issue, limit int) []string {
	var lines []string
	for i, issue := range issues {
		if i == limit {
			lines = append(lines, fmt.Sprintf("… %d more", len(issues)-limit))
			break
		}
		lines = append(lines, issue.Message)
	}
	return lines
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func indent(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return "  " + strings.Join(lines, "\n  ")
}
