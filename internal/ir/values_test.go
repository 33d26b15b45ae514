package ir

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueMappingMarshalPreservesOrder(t *testing.T) {
	m := ValueMapping{
		{Name: "Zeta", Instructions: []string{"add"}},
		{Name: "Alpha", Instructions: []string{"lw", "sw"}},
		{Name: "Empty"},
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":["add"],"Alpha":["lw","sw"],"Empty":[]}`, string(data))
}

func TestValueMappingUnmarshalPreservesOrder(t *testing.T) {
	var m ValueMapping
	err := json.Unmarshal([]byte(`{"MEM": ["lw"], "ALU": ["add", "sub"], "NOP": []}`), &m)
	require.NoError(t, err)

	want := ValueMapping{
		{Name: "MEM", Instructions: []string{"lw"}},
		{Name: "ALU", Instructions: []string{"add", "sub"}},
		{Name: "NOP", Instructions: []string{}},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("unexpected mapping (-want +got):\n%s", diff)
	}
}

func TestValueMappingUnmarshalRejectsDuplicateKeys(t *testing.T) {
	var m ValueMapping
	err := json.Unmarshal([]byte(`{"ALU": ["add"], "ALU": ["sub"]}`), &m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate value name")
}

func TestValueMappingUnmarshalRejectsNonObject(t *testing.T) {
	var m ValueMapping
	require.Error(t, json.Unmarshal([]byte(`["ALU"]`), &m))
	require.Error(t, json.Unmarshal([]byte(`{"ALU": "add"}`), &m))
}

func TestValueMappingInstructionsUnion(t *testing.T) {
	m := ValueMapping{
		{Name: "A", Instructions: []string{"add", "sub"}},
		{Name: "B", Instructions: []string{"lw", "add"}},
		{Name: "C"},
	}
	assert.Equal(t, []string{"add", "sub", "lw"}, m.Instructions())
	assert.Equal(t, []string{"A", "B", "C"}, m.Names())

	insts, ok := m.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, []string{"lw", "add"}, insts)

	_, ok = m.Lookup("D")
	assert.False(t, ok)
}

func TestValueMappingCloneIsDeep(t *testing.T) {
	m := ValueMapping{{Name: "A", Instructions: []string{"add"}}}
	c := m.Clone()
	c[0].Instructions[0] = "sub"
	c[0].Name = "B"
	assert.Equal(t, "A", m[0].Name)
	assert.Equal(t, "add", m[0].Instructions[0])
}
