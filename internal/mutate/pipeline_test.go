package mutate

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertNoResidue asserts no .backup or .draft sibling remains.
func assertNoResidue(t *testing.T, path string) {
	t.Helper()
	assert.NoFileExists(t, path+backupSuffix)
	assert.NoFileExists(t, path+draftSuffix)
}

func applyOp(t *testing.T, path string, pos int64, op Operation) *Receipt {
	t.Helper()
	receipt, err := (&Pipeline{Log: discardLogger()}).Apply(Request{Path: path, Position: pos, Op: op})
	require.NoError(t, err)
	return receipt
}

func TestReplaceByte_Basic(t *testing.T) {
	path := writeTestFile(t, []byte{0x00, 0x11, 0x22, 0x33, 0x44})

	receipt := applyOp(t, path, 2, Replace(0xFF))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x11, 0xFF, 0x33, 0x44}, got)

	assert.Equal(t, KindReplace, receipt.Kind)
	assert.Equal(t, byte(0x22), receipt.OldByte)
	assert.Equal(t, byte(0xFF), receipt.NewByte)
	assert.Equal(t, int64(5), receipt.OriginalSize)
	assert.Equal(t, int64(5), receipt.NewSize)
	assertNoResidue(t, path)
}

func TestRemoveByte_Basic(t *testing.T) {
	path := writeTestFile(t, []byte{0x00, 0x11, 0x22, 0x33, 0x44})

	receipt := applyOp(t, path, 2, Remove())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x11, 0x33, 0x44}, got)

	assert.Equal(t, byte(0x22), receipt.OldByte)
	assert.Equal(t, int64(4), receipt.NewSize)
	assertNoResidue(t, path)
}

func TestRemoveByte_First(t *testing.T) {
	path := writeTestFile(t, []byte{0xAA, 0xBB, 0xCC})

	applyOp(t, path, 0, Remove())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xBB, 0xCC}, got)
	assertNoResidue(t, path)
}

func TestRemoveByte_Last(t *testing.T) {
	path := writeTestFile(t, []byte{0xAA, 0xBB, 0xCC})

	applyOp(t, path, 2, Remove())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, got)
	assertNoResidue(t, path)
}

func TestRemoveByte_SingleByteFileBecomesEmpty(t *testing.T) {
	path := writeTestFile(t, []byte{0x42})

	applyOp(t, path, 0, Remove())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, got)
	assertNoResidue(t, path)
}

func TestAddByte_InsertAndAppend(t *testing.T) {
	path := writeTestFile(t, []byte{0xAA, 0xCC})

	applyOp(t, path, 1, Add(0xBB))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, got)

	applyOp(t, path, 3, Add(0xDD))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, got)
	assertNoResidue(t, path)
}

func TestAddByte_EmptyFile(t *testing.T) {
	path := writeTestFile(t, nil)

	require.NoError(t, AddByte(path, 0, 0x42))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x42}, got)
	assertNoResidue(t, path)
}

func TestReplaceByte_Idempotent(t *testing.T) {
	path := writeTestFile(t, []byte{0x00, 0x11, 0x22})

	require.NoError(t, ReplaceByte(path, 1, 0x99))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// Replacing with the same value again is not an error and changes
	// nothing.
	require.NoError(t, ReplaceByte(path, 1, 0x99))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assertNoResidue(t, path)
}

func TestPipeline_InvalidInput(t *testing.T) {
	empty := writeTestFile(t, nil)
	short := writeTestFile(t, []byte{0x00, 0x11})

	assert.True(t, IsInvalidInput(ReplaceByte(empty, 0, 0xFF)))
	assert.True(t, IsInvalidInput(RemoveByte(short, 10)))
	assert.True(t, IsInvalidInput(RemoveByte(short, 2)))

	// Nothing was touched.
	assertNoResidue(t, empty)
	assertNoResidue(t, short)
	data, err := os.ReadFile(short)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x11}, data)
}

func TestPipeline_NotFound(t *testing.T) {
	err := RemoveByte(writeTestFile(t, []byte{1})+".nope", 0)
	assert.True(t, IsNotFound(err))
}

func TestPipeline_LargeFileAcrossManyChunks(t *testing.T) {
	data := patternBytes(1000)
	path := writeTestFile(t, data)

	receipt := applyOp(t, path, 777, Remove())
	assert.Equal(t, int64(16), receipt.Chunks)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expectRemove(data, 777), got)
	assertNoResidue(t, path)
}

func TestPipeline_ObserverSeesPhasesInOrder(t *testing.T) {
	path := writeTestFile(t, []byte{0x01, 0x02, 0x03})

	var phases []Phase
	p := &Pipeline{
		Log: discardLogger(),
		Observer: ObserverFunc(func(phase Phase, req Request) {
			phases = append(phases, phase)
		}),
	}

	_, err := p.Apply(Request{Path: path, Position: 1, Op: Replace(0x20)})
	require.NoError(t, err)
	assert.Equal(t, []Phase{
		PhaseValidate, PhaseBackup, PhaseBuild, PhaseVerify, PhaseSwap, PhaseCleanup,
	}, phases)
}

func TestPipeline_InjectedVerificationFailure(t *testing.T) {
	data := patternBytes(200)
	path := writeTestFile(t, data)

	// Corrupt the draft from the verify-phase callback, after the build
	// finished but before verification reads a byte.
	p := &Pipeline{
		Log: discardLogger(),
		Observer: ObserverFunc(func(phase Phase, req Request) {
			if phase == PhaseVerify {
				corruptByte(t, path+draftSuffix, 150)
			}
		}),
	}

	_, err := p.Apply(Request{Path: path, Position: 10, Op: Replace(0xFF)})
	require.Error(t, err)
	assert.True(t, IsIntegrityFailure(err))

	// Original is provably unchanged, the draft was deleted, and the
	// backup remains for the operator.
	got, rerr := os.ReadFile(path)
	require.NoError(t, rerr)
	assert.Equal(t, data, got)
	assert.NoFileExists(t, path+draftSuffix)
	assert.FileExists(t, path+backupSuffix)
}

func TestPipeline_ErrorCarriesDiagnostics(t *testing.T) {
	path := writeTestFile(t, []byte{0x00, 0x11})

	err := RemoveByte(path, 10)
	require.Error(t, err)

	var me *MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeInvalidInput, me.Code)
	assert.Equal(t, path, me.Path)
	assert.Equal(t, int64(10), me.Position)
	assert.Contains(t, me.Error(), "INVALID_INPUT")
}
