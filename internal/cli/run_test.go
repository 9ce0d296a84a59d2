package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineality/bytesurgeon/internal/journal"
)

// writeTarget creates a file to mutate in a temp dir.
func writeTarget(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// execute runs the CLI with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParsePosition(t *testing.T) {
	pos, err := parsePosition("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), pos)

	_, err = parsePosition("-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = parsePosition("abc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseByteValue(t *testing.T) {
	cases := []struct {
		in   string
		want byte
	}{
		{"0", 0x00},
		{"255", 0xFF},
		{"0xFF", 0xFF},
		{"0x0a", 0x0A},
		{"0o377", 0xFF},
	}
	for _, tc := range cases {
		v, err := parseByteValue(tc.in)
		require.NoError(t, err, "parseByteValue(%q)", tc.in)
		assert.Equal(t, tc.want, v, "parseByteValue(%q)", tc.in)
	}

	for _, bad := range []string{"256", "-1", "xyz", "0x100", ""} {
		_, err := parseByteValue(bad)
		require.Error(t, err, "parseByteValue(%q) should fail", bad)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	}
}

func TestReplaceCommand(t *testing.T) {
	path := writeTarget(t, []byte{0x11, 0x22, 0x33})

	out, err := execute(t, "replace", path, "1", "0xFF")
	require.NoError(t, err)
	assert.Contains(t, out, "applied replace")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x11, 0xFF, 0x33}, data)
}

func TestRemoveCommand(t *testing.T) {
	path := writeTarget(t, []byte{0x11, 0x22, 0x33})

	out, err := execute(t, "remove", path, "0")
	require.NoError(t, err)
	assert.Contains(t, out, "removed byte: 0x11")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x22, 0x33}, data)
}

func TestAddCommand(t *testing.T) {
	path := writeTarget(t, []byte{0x11, 0x33})

	out, err := execute(t, "add", path, "1", "0x22")
	require.NoError(t, err)
	assert.Contains(t, out, "inserted byte: 0x22")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x11, 0x22, 0x33}, data)
}

func TestMutationFailureExitCode(t *testing.T) {
	path := writeTarget(t, []byte{0x11, 0x22})

	out, err := execute(t, "replace", path, "9", "0xFF")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "error:")

	// The failed run must not change the target.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, []byte{0x11, 0x22}, data)
}

func TestBadArgumentsExitCode(t *testing.T) {
	path := writeTarget(t, []byte{0x11})

	_, err := execute(t, "replace", path, "0", "0x100")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "replace", path, "not-a-number", "0xFF")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestJSONOutput(t *testing.T) {
	path := writeTarget(t, []byte{0x11, 0x22})

	out, err := execute(t, "--format", "json", "replace", path, "0", "0xAA")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"ok"`)
	assert.Contains(t, out, `"kind":"replace"`)
}

func TestJournalRecordsOutcomes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x11, 0x22}, 0o644))
	dbPath := filepath.Join(dir, "journal.db")

	_, err := execute(t, "--journal", dbPath, "replace", path, "1", "0xFF")
	require.NoError(t, err)

	// A failed mutation is journaled too.
	_, err = execute(t, "--journal", dbPath, "remove", path, "9")
	require.Error(t, err)

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.List(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, journal.StatusApplied, entries[0].Status)
	assert.Equal(t, "replace", entries[0].Kind)
	assert.Equal(t, journal.StatusFailed, entries[1].Status)
	assert.Contains(t, entries[1].Error, "position")
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x11, 0x22, 0x33}, 0o644))
	dbPath := filepath.Join(dir, "journal.db")

	_, err := execute(t, "--journal", dbPath, "replace", path, "0", "0xAA")
	require.NoError(t, err)
	_, err = execute(t, "--journal", dbPath, "remove", path, "2")
	require.NoError(t, err)

	out, err := execute(t, "--journal", dbPath, "history", path)
	require.NoError(t, err)
	assert.Contains(t, out, "replace")
	assert.Contains(t, out, "0x11 -> 0xAA")
	assert.Contains(t, out, "removed 0x33")
}

func TestHistoryRequiresJournal(t *testing.T) {
	_, err := execute(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--journal")
}

func TestHistoryEmptyJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	out, err := execute(t, "--journal", dbPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "no mutations recorded")
}
