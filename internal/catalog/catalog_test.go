package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `add rv_i 0000000??????????000?????0110011 rd rs1 rs2
sub rv_i 0100000??????????000?????0110011 rd rs1 rs2

lw rv_i ?????????????????010?????0000011 rd rs1 imm12
fence rv_i ?????????????????000?????0001111
`

func TestParseFlatCatalog(t *testing.T) {
	instrs, err := Parse(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	want := []Instruction{
		{Name: "add", Extension: "rv_i", Encoding: "0000000??????????000?????0110011", Args: []string{"rd", "rs1", "rs2"}},
		{Name: "sub", Extension: "rv_i", Encoding: "0100000??????????000?????0110011", Args: []string{"rd", "rs1", "rs2"}},
		{Name: "lw", Extension: "rv_i", Encoding: "?????????????????010?????0000011", Args: []string{"rd", "rs1", "imm12"}},
		{Name: "fence", Extension: "rv_i", Encoding: "?????????????????000?????0001111", Args: []string{}},
	}
	if diff := cmp.Diff(want, instrs); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMultiTagExtension(t *testing.T) {
	line := "sh1add rv_zba rv64_zba 0010000??????????010?????0110011 rd rs1 rs2\n"
	instrs, err := Parse(strings.NewReader(line))
	require.NoError(t, err)
	require.Len(t, instrs, 1)

	assert.Equal(t, "rv_zba rv64_zba", instrs[0].Extension)
	assert.Equal(t, []string{"rv_zba", "rv64_zba"}, instrs[0].Extensions())
	assert.Equal(t, "0010000??????????010?????0110011", instrs[0].Encoding)
	assert.Equal(t, []string{"rd", "rs1", "rs2"}, instrs[0].Args)
}

func TestParseNonCanonicalEncodingFallsBackToThirdField(t *testing.T) {
	instrs, err := Parse(strings.NewReader("foo ext ENC a b\n"))
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	assert.Equal(t, "ext", instrs[0].Extension)
	assert.Equal(t, "ENC", instrs[0].Encoding)
	assert.Equal(t, []string{"a", "b"}, instrs[0].Args)
}

func TestParseRowWithoutExtension(t *testing.T) {
	input := "fence_x 0000?????????????????????0001111 rd rs1\nnop_x 00000000000000000000000000010011\n"
	instrs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	want := []Instruction{
		{Name: "fence_x", Extension: "", Encoding: "0000?????????????????????0001111", Args: []string{"rd", "rs1"}},
		{Name: "nop_x", Extension: "", Encoding: "00000000000000000000000000010011", Args: []string{}},
	}
	if diff := cmp.Diff(want, instrs); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, instrs[0].Extensions())
}

func TestParseSingleTokenRowIsMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("lonely\n"))
	require.ErrorIs(t, err, ErrMalformedCatalogRow)
}

func TestParseMalformedRow(t *testing.T) {
	input := "add rv_i 0000000??????????000?????0110011\n\nbroken rv_i\n"
	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedCatalogRow))

	var rowErr *MalformedRowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Line)
	assert.Equal(t, "broken rv_i", rowErr.Text)
}

func TestLoadReplacesCatalog(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Load(strings.NewReader(sampleCatalog)))
	assert.Equal(t, 4, c.Len())

	require.NoError(t, c.Load(strings.NewReader("jal rv_i ?????????????????????????1101111 rd jimm20\n")))
	assert.Equal(t, 1, c.Len())
	assert.False(t, c.Has("add"))
	assert.True(t, c.Has("jal"))
}

func TestLoadFailureKeepsPreviousCatalog(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Load(strings.NewReader(sampleCatalog)))

	err := c.Load(strings.NewReader("jal rv_i ?????????????????????????1101111\nbad\n"))
	require.ErrorIs(t, err, ErrMalformedCatalogRow)

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []string{"add", "sub", "lw", "fence"}, c.Names())
	assert.False(t, c.Has("jal"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0644))

	c := New(nil)
	require.NoError(t, c.LoadFile(path))
	inst, ok := c.Lookup("lw")
	require.True(t, ok)
	assert.Equal(t, []string{"rd", "rs1", "imm12"}, inst.Args)

	err := c.LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, 4, c.Len())
}

func TestCatalogSearch(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Load(strings.NewReader(sampleCatalog)))

	names := func(instrs []Instruction) []string {
		var out []string
		for _, i := range instrs {
			out = append(out, i.Name)
		}
		return out
	}

	assert.Equal(t, []string{"add"}, names(c.Search("ADD")))
	assert.Equal(t, []string{"lw"}, names(c.Search("imm12")))
	assert.Equal(t, []string{"lw"}, names(c.Search("010?????0000011")))
	assert.Len(t, c.Search(""), 4)
	assert.Empty(t, c.Search("vsetvli"))
}

func TestCatalogExtensions(t *testing.T) {
	c := New([]Instruction{
		{Name: "add", Extension: "rv_i"},
		{Name: "sh1add", Extension: "rv_zba rv64_zba"},
		{Name: "mul", Extension: "rv_m"},
		{Name: "nop"},
	})
	assert.Equal(t, []string{"rv64_zba", "rv_i", "rv_m", "rv_zba"}, c.Extensions())
}

func TestInstructionRecord(t *testing.T) {
	inst := Instruction{Name: "fence", Extension: "rv_i", Encoding: "0000", Args: []string{}}
	assert.Equal(t, "fence rv_i 0000", inst.Record())

	inst = Instruction{Name: "add", Extension: "rv_i rv64_i", Encoding: "01", Args: []string{"rd", "rs1"}}
	assert.Equal(t, "add rv_i rv64_i 01 rd rs1", inst.Record())
	assert.True(t, inst.HasExtension("rv64_i"))
	assert.False(t, inst.HasExtension("rv_m"))
}
