package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDatabase = `{
  "sub": {
    "encoding": "0100000----------000-----0110011",
    "variable_fields": ["rd", "rs1", "rs2"],
    "extension": ["rv_i"],
    "match": "0x40000033",
    "mask": "0xfe00707f"
  },
  "add": {
    "encoding": "0000000----------000-----0110011",
    "variable_fields": ["rd", "rs1", "rs2"],
    "extension": ["rv_i"]
  },
  "c.nop": {
    "variable_fields": [],
    "extension": ["rv_c"]
  },
  "weird": "not an object",
  "sh1add": {
    "encoding": "0010000----------010-----0110011",
    "variable_fields": ["rd", "rs1", "rs2"],
    "extension": ["rv_zba", "rv64_zba"]
  },
  "ecall": {
    "encoding": "00000000000000000000000001110011",
    "variable_fields": [],
    "extension": "rv_i"
  }
}`

func TestImportDatabase(t *testing.T) {
	instrs, err := ImportDatabase(strings.NewReader(sampleDatabase))
	require.NoError(t, err)

	want := []Instruction{
		{Name: "sub", Extension: "rv_i", Encoding: "0100000??????????000?????0110011", Args: []string{"rd", "rs1", "rs2"}},
		{Name: "add", Extension: "rv_i", Encoding: "0000000??????????000?????0110011", Args: []string{"rd", "rs1", "rs2"}},
		{Name: "sh1add", Extension: "rv_zba rv64_zba", Encoding: "0010000??????????010?????0110011", Args: []string{"rd", "rs1", "rs2"}},
		{Name: "ecall", Extension: "rv_i", Encoding: "00000000000000000000000001110011", Args: []string{}},
	}
	if diff := cmp.Diff(want, instrs); diff != "" {
		t.Errorf("ImportDatabase() mismatch (-want +got):\n%s", diff)
	}
}

func TestImportDatabaseRejectsNonObject(t *testing.T) {
	_, err := ImportDatabase(strings.NewReader(`["add"]`))
	require.ErrorIs(t, err, ErrInvalidDatabase)

	_, err = ImportDatabase(strings.NewReader(`{"add": {`))
	require.ErrorIs(t, err, ErrInvalidDatabase)

	_, err = ImportDatabase(strings.NewReader(``))
	require.ErrorIs(t, err, ErrInvalidDatabase)
}

func TestImportDatabaseSkipsUndecodableEntries(t *testing.T) {
	instrs, err := ImportDatabase(strings.NewReader(`{"x": {"encoding": 42}, "y": null, "z": {"encoding": "01"}}`))
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	assert.Equal(t, "z", instrs[0].Name)
}

func TestImportThenWriteThenParse(t *testing.T) {
	instrs, err := ImportDatabase(strings.NewReader(sampleDatabase))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFlat(&buf, instrs))
	assert.Contains(t, buf.String(), "add rv_i 0000000??????????000?????0110011 rd rs1 rs2\n")
	assert.Contains(t, buf.String(), "ecall rv_i 00000000000000000000000001110011\n")

	parsed, err := Parse(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(instrs, parsed); diff != "" {
		t.Errorf("round trip mismatch (-imported +parsed):\n%s", diff)
	}
}

func TestImportThenWriteThenParseEmptyExtension(t *testing.T) {
	const db = `{
  "fence_x": {"encoding": "0000---------------------0001111", "variable_fields": ["rd", "rs1"], "extension": []},
  "nop_x": {"encoding": "00000000000000000000000000010011", "variable_fields": [], "extension": []},
  "lui": {"encoding": "-------------------------0110111", "variable_fields": ["rd", "imm20"], "extension": ["rv_i"]}
}`
	instrs, err := ImportDatabase(strings.NewReader(db))
	require.NoError(t, err)
	require.Len(t, instrs, 3)

	var buf bytes.Buffer
	require.NoError(t, WriteFlat(&buf, instrs))
	assert.Contains(t, buf.String(), "fence_x 0000?????????????????????0001111 rd rs1\n")
	assert.Contains(t, buf.String(), "nop_x 00000000000000000000000000010011\n")

	parsed, err := Parse(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(instrs, parsed); diff != "" {
		t.Errorf("round trip mismatch (-imported +parsed):\n%s", diff)
	}
	for _, inst := range parsed {
		if inst.Name == "lui" {
			continue
		}
		assert.Empty(t, inst.Extension, inst.Name)
	}
}

func TestWriteFlatRejectsAmbiguousRows(t *testing.T) {
	tests := []struct {
		name string
		inst Instruction
	}{
		{"empty name", Instruction{Encoding: "01"}},
		{"name with space", Instruction{Name: "a b", Encoding: "01"}},
		{"empty encoding", Instruction{Name: "x", Extension: "rv_i"}},
		{"non-canonical encoding", Instruction{Name: "x", Extension: "rv_i", Encoding: "0x1"}},
		{"extension reads as encoding", Instruction{Name: "x", Extension: "rv_i 01", Encoding: "0?"}},
		{"empty arg", Instruction{Name: "x", Extension: "rv_i", Encoding: "01", Args: []string{""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ok := Instruction{Name: "add", Extension: "rv_i", Encoding: "01"}
			err := WriteFlat(&buf, []Instruction{ok, tt.inst})
			require.ErrorIs(t, err, ErrUnwritableInstruction)
			assert.Zero(t, buf.Len(), "nothing is written when any row is refused")
		})
	}
}

func TestImportDatabaseFileAndWriteFlatFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "instr_dict.json")
	out := filepath.Join(dir, "riscv_instructions.csv")
	require.NoError(t, os.WriteFile(in, []byte(sampleDatabase), 0644))

	instrs, err := ImportDatabaseFile(in)
	require.NoError(t, err)
	require.NoError(t, WriteFlatFile(out, instrs))

	c := New(nil)
	require.NoError(t, c.LoadFile(out))
	assert.Equal(t, []string{"sub", "add", "sh1add", "ecall"}, c.Names())

	_, err = ImportDatabaseFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
