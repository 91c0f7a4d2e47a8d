package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCounterMissingFile(t *testing.T) {
	count, err := ReadCounter(filepath.Join(t.TempDir(), "counter.txt"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestReadCounterParsesValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.txt")
	require.NoError(t, os.WriteFile(path, []byte("42\n"), 0644))

	count, err := ReadCounter(path)
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestReadCounterRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a number"), 0644))

	_, err := ReadCounter(path)
	assert.Error(t, err)
}

func TestReadCounterRejectsNegative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.txt")
	require.NoError(t, os.WriteFile(path, []byte("-3"), 0644))

	_, err := ReadCounter(path)
	assert.Error(t, err)
}

func TestWriteCounterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.txt")
	require.NoError(t, WriteCounter(path, 7))

	count, err := ReadCounter(path)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestReadPromptMissingFileSentinel(t *testing.T) {
	got := ReadPrompt(filepath.Join(t.TempDir(), "prompt.txt"))
	assert.Equal(t, "prompt file not found.", got)
}

func TestReadPromptReturnsContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("write me a caption"), 0644))

	assert.Equal(t, "write me a caption", ReadPrompt(path))
}
