package cli

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	defer RootCmd.SetArgs(nil)
	err := RootCmd.Execute()
	return out.String(), err
}

func TestExec_OneLineReport(t *testing.T) {
	out, err := runCommand(t, "exec", "--", "true")
	require.NoError(t, err)
	assert.Contains(t, out, "took")
	assert.Contains(t, out, "runShell")
}

func TestExec_VerboseReport(t *testing.T) {
	out, err := runCommand(t, "exec", "-n", "3", "--mode", "none", "--verbose", "--", "true")
	require.NoError(t, err)
	assert.Contains(t, out, "Run times: 3")
	assert.Contains(t, out, "Mean:")
	assert.Contains(t, out, "Standard deviation:")
}

func TestExec_JSONRecord(t *testing.T) {
	out, err := runCommand(t, "exec", "-n", "2", "--mode", "none", "--json", "--", "true")
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.EqualValues(t, 2, record["count"])
	assert.NotContains(t, out, "took")
}

func TestExec_SelectField(t *testing.T) {
	out, err := runCommand(t, "exec", "-n", "2", "--mode", "none", "--select", "count", "--", "true")
	require.NoError(t, err)

	n, convErr := strconv.Atoi(strings.TrimSpace(out))
	require.NoError(t, convErr)
	assert.Equal(t, 2, n)
}

func TestExec_SelectUnknownField(t *testing.T) {
	_, err := runCommand(t, "exec", "--select", "nope", "--", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such field")
}

func TestExec_CommandFailure(t *testing.T) {
	_, err := runCommand(t, "exec", "--", "false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command failed")
}

func TestExec_InvalidRuns(t *testing.T) {
	_, err := runCommand(t, "exec", "-n", "0", "--", "true")
	require.Error(t, err)
}

func TestExec_MissingCommand(t *testing.T) {
	_, err := runCommand(t, "exec")
	require.Error(t, err)
}
