package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanCatalog(t *testing.T) {
	instrs := []Instruction{
		{Name: "add", Encoding: "0000000??????????000?????0110011"},
		{Name: "ecall", Encoding: "00000000000000000000000001110011"},
	}
	assert.Empty(t, Validate(instrs))
}

func TestValidateReportsLengthAndCharset(t *testing.T) {
	instrs := []Instruction{
		{Name: "c.addi", Encoding: "000???????????01"},
		{Name: "raw", Encoding: "0000000----------000-----0110011"},
		{Name: "both", Encoding: "01x"},
	}
	issues := Validate(instrs)
	require.Len(t, issues, 4)

	assert.Equal(t, Issue{Instruction: "c.addi", Kind: IssueLength,
		Message: `instruction "c.addi" encoding is 16 bits, want 32`}, issues[0])
	assert.Equal(t, "raw", issues[1].Instruction)
	assert.Equal(t, IssueCharset, issues[1].Kind)
	assert.Equal(t, IssueLength, issues[2].Kind)
	assert.Equal(t, IssueCharset, issues[3].Kind)
	assert.Equal(t, "both", issues[3].Instruction)
}
