package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBenchReportsResidualsForEveryBackend(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runBench(&buf))
	out := buf.String()
	assert.Contains(t, out, "sparse")
	assert.Contains(t, out, "iterative")
}
