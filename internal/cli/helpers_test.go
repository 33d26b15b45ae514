package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ctrlgen/internal/config"
	"github.com/roach88/ctrlgen/internal/testutil"
)

var cliStart = time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.Local)

// cliEnv is an isolated configuration, record store and output directory.
type cliEnv struct {
	dir        string
	configPath string
	storePath  string
	outputDir  string
	clock      *testutil.StepClock
}

func newCLIEnv(t *testing.T, extra string) *cliEnv {
	t.Helper()
	for _, k := range []string{config.EnvCatalogPath, config.EnvStorePath, config.EnvOutputDir, config.EnvLogLevel} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	env := &cliEnv{
		dir:       dir,
		storePath: filepath.Join(dir, "records.json"),
		outputDir: filepath.Join(dir, "scala"),
		clock:     testutil.NewStepClock(cliStart, time.Second),
	}
	cfg := fmt.Sprintf(`store:
  driver: json
  path: %s
  auto_save: true
codegen:
  auto_format: true
  output_dir: %s
logging:
  level: error
%s`, env.storePath, env.outputDir, extra)
	env.configPath = testutil.WriteFile(t, dir, "config.yaml", cfg)
	return env
}

// run executes the CLI and returns stdout, stderr and the command error.
func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommandWithOptions(&RootOptions{Now: e.clock.Now})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// runJSON executes the CLI with --format json and decodes the response.
func (e *cliEnv) runJSON(t *testing.T, args ...string) (testResponse, error) {
	t.Helper()
	stdout, _, err := e.run(t, append([]string{"--format", "json"}, args...)...)
	var resp testResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), "stdout: %s", stdout)
	return resp, err
}

func (e *cliEnv) writeDefinition(t *testing.T, name, content string) string {
	t.Helper()
	return testutil.WriteFile(t, e.dir, name, content)
}

// testResponse mirrors CLIResponse with the payload left raw.
type testResponse struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Error    *CLIError       `json:"error"`
	Warnings []string        `json:"warnings"`
	RunID    string          `json:"run_id"`
}

func (r testResponse) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v))
}

const aluDefinition = `name: AluOp
encoding: Binary
values:
  - name: ADD
    instructions: [add, addi, addw, addiw, c.add, c.addi]
  - name: SUB
    instructions: [sub]
  - name: NOP
`

const conflictingDefinition = `name: Bad
values:
  - name: A
    instructions: [add, sub]
  - name: B
    instructions: [sub, add, mul]
`
