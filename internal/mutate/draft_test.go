package mutate

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// patternBytes builds n bytes of a deterministic non-repeating-ish pattern.
func patternBytes(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*31 + 7)
	}
	return data
}

// expectReplace/expectRemove/expectAdd compute the intended result in
// memory for comparison against the built draft.
func expectReplace(data []byte, pos int64, v byte) []byte {
	out := append([]byte(nil), data...)
	out[pos] = v
	return out
}

func expectRemove(data []byte, pos int64) []byte {
	out := append([]byte(nil), data[:pos]...)
	return append(out, data[pos+1:]...)
}

func expectAdd(data []byte, pos int64, v byte) []byte {
	out := append([]byte(nil), data[:pos]...)
	out = append(out, v)
	return append(out, data[pos:]...)
}

func buildToDraft(t *testing.T, data []byte, pos int64, op Operation) (*buildResult, string) {
	t.Helper()
	src := writeTestFile(t, data)
	draft := src + draftSuffix

	res, err := buildDraft(src, draft, pos, op, discardLogger())
	require.NoError(t, err)
	return res, draft
}

func TestBuildDraft_ReplaceMiddle(t *testing.T) {
	data := []byte{0x00, 0x11, 0x22, 0x33, 0x44}
	res, draft := buildToDraft(t, data, 2, Replace(0xFF))

	got, err := os.ReadFile(draft)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x11, 0xFF, 0x33, 0x44}, got)

	assert.True(t, res.applied)
	assert.Equal(t, byte(0x22), res.oldByte)
	assert.Equal(t, int64(5), res.bytesRead)
	assert.Equal(t, int64(5), res.bytesWritten)
	assert.Equal(t, int64(1), res.chunks)
}

func TestBuildDraft_RemoveAcrossChunkBoundaries(t *testing.T) {
	// Positions straddling the 64-byte window: first byte of the file,
	// last byte of chunk 1, first and second bytes of chunk 2, last byte
	// of the file.
	data := patternBytes(200)
	for _, pos := range []int64{0, 63, 64, 65, 199} {
		t.Run(fmt.Sprintf("pos%d", pos), func(t *testing.T) {
			res, draft := buildToDraft(t, data, pos, Remove())

			got, err := os.ReadFile(draft)
			require.NoError(t, err)
			assert.Equal(t, expectRemove(data, pos), got)
			assert.True(t, res.applied)
			assert.Equal(t, data[pos], res.oldByte)
			assert.Equal(t, int64(199), res.bytesWritten)
			assert.Equal(t, int64(4), res.chunks)
		})
	}
}

func TestBuildDraft_ReplaceAcrossChunkBoundaries(t *testing.T) {
	data := patternBytes(130)
	for _, pos := range []int64{0, 63, 64, 65, 129} {
		res, draft := buildToDraft(t, data, pos, Replace(0xEE))

		got, err := os.ReadFile(draft)
		require.NoError(t, err)
		assert.Equal(t, expectReplace(data, pos, 0xEE), got, "position %d", pos)
		assert.Equal(t, data[pos], res.oldByte)
	}
}

func TestBuildDraft_AddInsertAndAppend(t *testing.T) {
	data := patternBytes(130)
	for _, pos := range []int64{0, 63, 64, 65, 129, 130} {
		res, draft := buildToDraft(t, data, pos, Add(0xAB))

		got, err := os.ReadFile(draft)
		require.NoError(t, err)
		assert.Equal(t, expectAdd(data, pos, 0xAB), got, "position %d", pos)
		assert.True(t, res.applied)
		assert.Equal(t, int64(131), res.bytesWritten)
	}
}

func TestBuildDraft_AddToEmptyFile(t *testing.T) {
	res, draft := buildToDraft(t, nil, 0, Add(0x42))

	got, err := os.ReadFile(draft)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x42}, got)
	assert.Equal(t, int64(0), res.chunks)
	assert.Equal(t, int64(1), res.bytesWritten)
}

func TestBuildDraft_RemoveSingleByteFile(t *testing.T) {
	res, draft := buildToDraft(t, []byte{0x42}, 0, Remove())

	got, err := os.ReadFile(draft)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, byte(0x42), res.oldByte)
}

func TestBuildDraft_TargetNeverReached(t *testing.T) {
	// The validator makes this unreachable through the pipeline; the
	// builder still checks independently.
	src := writeTestFile(t, []byte{0x00, 0x11})
	draft := src + draftSuffix

	_, err := buildDraft(src, draft, 10, Remove(), discardLogger())
	require.Error(t, err)
	assert.True(t, IsIntegrityFailure(err))
	assert.NoFileExists(t, draft, "partial draft must be deleted on failure")
}

func TestBuildDraft_SourceUntouched(t *testing.T) {
	data := patternBytes(150)
	src := writeTestFile(t, data)

	_, err := buildDraft(src, src+draftSuffix, 75, Replace(0x00), discardLogger())
	require.NoError(t, err)

	got, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestBuildDraft_MissingSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "missing.bin")

	_, err := buildDraft(src, filepath.Join(dir, "missing.bin.draft"), 0, Remove(), discardLogger())
	require.Error(t, err)
}
