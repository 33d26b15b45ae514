package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roach88/ctrlgen/internal/ir"
)

// descriptor is one entry of the structured instruction database.
// match and mask are present in the upstream format but unused here.
type descriptor struct {
	Encoding       string     `json:"encoding"`
	VariableFields stringList `json:"variable_fields"`
	Extension      stringList `json:"extension"`
}

// stringList accepts either a JSON array of strings or a single scalar.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var scalar any
	if err := json.Unmarshal(data, &scalar); err != nil {
		return err
	}
	*l = stringList{fmt.Sprint(scalar)}
	return nil
}

// ImportDatabase converts a structured instruction database into catalog
// instructions, in document order.
//
// Entries that are not JSON objects, do not decode, or carry no encoding are
// skipped: they do not describe a concrete bit pattern.
func ImportDatabase(r io.Reader) ([]Instruction, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDatabase, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidDatabase)
	}

	var instrs []Instruction
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDatabase, err)
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrInvalidDatabase, name, err)
		}

		inst, ok := convertDescriptor(name, raw)
		if !ok {
			continue
		}
		instrs = append(instrs, inst)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDatabase, err)
	}
	return instrs, nil
}

// ImportDatabaseFile reads a structured instruction database from path.
func ImportDatabaseFile(path string) ([]Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening instruction database: %w", err)
	}
	defer f.Close()
	return ImportDatabase(f)
}

func convertDescriptor(name string, raw json.RawMessage) (Instruction, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Instruction{}, false
	}
	var d descriptor
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return Instruction{}, false
	}
	if d.Encoding == "" {
		return Instruction{}, false
	}

	args := []string{}
	for _, f := range d.VariableFields {
		args = append(args, strings.Fields(f)...)
	}
	return Instruction{
		Name:      ir.NormalizeName(name),
		Extension: strings.Join(d.Extension, " "),
		Encoding:  NormalizeEncoding(d.Encoding),
		Args:      args,
	}, true
}

// WriteFlat writes instrs as a flat catalog, one instruction per line.
// Every instruction is checked first so that Parse reads each line back to
// the same fields; nothing is written if one fails.
func WriteFlat(w io.Writer, instrs []Instruction) error {
	if err := checkRecords(instrs); err != nil {
		return err
	}
	for _, inst := range instrs {
		if _, err := io.WriteString(w, inst.Record()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteFlatFile writes instrs to path as a flat catalog.
func WriteFlatFile(path string, instrs []Instruction) error {
	if err := checkRecords(instrs); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteFlat(f, instrs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func checkRecords(instrs []Instruction) error {
	for _, inst := range instrs {
		if err := inst.checkRecord(); err != nil {
			return err
		}
	}
	return nil
}
