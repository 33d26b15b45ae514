package compiler

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ctrlgen/internal/ir"
)

//go:embed definition.cue
var definitionSchema string

// Definition is the on-disk description of a control signal: its name, its
// encoding and the instructions assigned to each value.
type Definition struct {
	Name     string     `json:"name" yaml:"name"`
	Encoding string     `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Values   []ir.Value `json:"values" yaml:"values"`
}

// EncodingType resolves the definition's encoding, defaulting to OneHot.
func (d Definition) EncodingType() (ir.EncodingType, error) {
	enc, err := ir.ParseEncodingType(d.Encoding)
	if err != nil {
		return "", &CompileError{
			Code:    CodeInvalidEncoding,
			Field:   "encoding",
			Message: err.Error(),
			Err:     ErrInvalidEncoding,
		}
	}
	return enc, nil
}

// Partition builds an editable partition from the definition's values.
func (d Definition) Partition(opts ...Option) *Partition {
	p := NewPartition(opts...)
	for _, v := range d.Values {
		p.AddValue(v.Name, v.Instructions...)
	}
	return p
}

// Compile commits the definition as a new ControlSignal.
func (d Definition) Compile(opts ...Option) (ir.ControlSignal, error) {
	return d.Commit(d.Partition(opts...))
}

// Commit commits p under the definition's name and encoding. An
// unparseable encoding is passed through so Commit reports a missing
// name first.
func (d Definition) Commit(p *Partition) (ir.ControlSignal, error) {
	enc, err := d.EncodingType()
	if err != nil {
		enc = ir.EncodingType(d.Encoding)
	}
	return p.Commit(d.Name, enc)
}

// DefinitionFromSignal converts a stored record back into a definition.
func DefinitionFromSignal(sig ir.ControlSignal) Definition {
	return Definition{
		Name:     sig.Name,
		Encoding: sig.EncodingType.String(),
		Values:   sig.Values.Clone(),
	}
}

// MarshalYAMLDocument renders the definition as a YAML document.
func (d Definition) MarshalYAMLDocument() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadDefinitionFile reads a definition, choosing the format from the file
// extension. .yaml and .yml are parsed as YAML; .cue and .json go through
// the CUE schema.
func LoadDefinitionFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAMLDefinition(data, path)
	case ".cue", ".json":
		return ParseCUEDefinition(data, path)
	default:
		return nil, &CompileError{
			Code:    CodeInvalidDefinition,
			Field:   "file",
			Message: fmt.Sprintf("unsupported definition format %q (want .yaml, .yml, .cue or .json)", filepath.Ext(path)),
			Err:     ErrInvalidDefinition,
		}
	}
}

// ParseYAMLDefinition decodes a YAML definition. Unknown fields are rejected.
func ParseYAMLDefinition(data []byte, filename string) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalidDefinition(filename, "document is empty")
		}
		return nil, invalidDefinition(filename, err.Error())
	}
	return &def, nil
}

// ParseCUEDefinition evaluates src against the closed #Definition schema.
// JSON input is accepted since JSON is valid CUE.
func ParseCUEDefinition(src []byte, filename string) (*Definition, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(definitionSchema, cue.Filename("definition.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile definition schema: %w", err)
	}

	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Definition")).Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var def Definition
	if err := v.Decode(&def); err != nil {
		return nil, formatCUEError(err)
	}
	return &def, nil
}

func invalidDefinition(filename, msg string) *CompileError {
	return &CompileError{
		Code:    CodeInvalidDefinition,
		Field:   filename,
		Message: msg,
		Err:     ErrInvalidDefinition,
	}
}

// formatCUEError keeps the first CUE error and its source position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{
			Code:    CodeInvalidDefinition,
			Field:   "cue",
			Message: err.Error(),
			Err:     ErrInvalidDefinition,
		}
	}

	first := errs[0]
	ce := &CompileError{
		Code:    CodeInvalidDefinition,
		Field:   "cue",
		Message: first.Error(),
		Err:     ErrInvalidDefinition,
	}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
