package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ctrlgen/internal/codegen"
)

func TestRenderStoredSignal(t *testing.T) {
	env := newCLIEnv(t, "")
	def := env.writeDefinition(t, "alu.yaml", aluDefinition)
	_, _, err := env.run(t, "compile", def)
	require.NoError(t, err)
	id := storedRecords(t, env)[0].SignalID

	resp, err := env.runJSON(t, "render", id, "--artifact", "field")
	require.NoError(t, err)

	var result RenderResult
	resp.decode(t, &result)
	assert.Equal(t, id, result.Signal.SignalID)
	require.Len(t, result.Artifacts, 1)
	assert.Equal(t, codegen.ArtifactField, result.Artifacts[0].Artifact)
	assert.Contains(t, result.Artifacts[0].Code, "AluOp.isADD -> AluOp.ADD,")
	assert.Contains(t, result.Artifacts[0].Code, "BitPat.dontCare(2)")

	// Rendering leaves the store untouched.
	assert.Len(t, storedRecords(t, env), 1)
}

func TestRenderSaveCode(t *testing.T) {
	env := newCLIEnv(t, "")
	def := env.writeDefinition(t, "alu.yaml", aluDefinition)
	_, _, err := env.run(t, "compile", def)
	require.NoError(t, err)
	id := storedRecords(t, env)[0].SignalID

	stdout, _, err := env.run(t, "render", id, "--save-code")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+env.outputDir)
	assert.DirExists(t, env.outputDir)
}

func TestRenderUnknownSignal(t *testing.T) {
	env := newCLIEnv(t, "")

	resp, err := env.runJSON(t, "render", "20990101_000000_000000")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeRecordNotFound, resp.Error.Code)
}
