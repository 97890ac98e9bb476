package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertFile checks the content of a file the run wrote into the test
// directory.
func AssertFile(t *testing.T, result *HarnessResult, name, want string) {
	t.Helper()
	data, err := os.ReadFile(result.Path(name))
	require.NoError(t, err, "expected the run to write %s", name)
	assert.Equal(t, want, string(data))
}

// AssertBytes checks the content of a binary file in the test directory.
func AssertBytes(t *testing.T, result *HarnessResult, name string, want []byte) {
	t.Helper()
	data, err := os.ReadFile(result.Path(name))
	require.NoError(t, err, "expected %s to exist", name)
	assert.Equal(t, want, data)
}

// AssertLogged checks that a log message was written during the run.
func AssertLogged(t *testing.T, result *HarnessResult, msg string) {
	t.Helper()
	require.True(t,
		strings.Contains(result.LogOutput, msg),
		"expected log output to contain %q", msg,
	)
}
