package mutate

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// verifyResult carries the evidence gathered during verification.
type verifyResult struct {
	originalSize int64
	draftSize    int64

	// prefixChecksum and suffixChecksum are the original-side digests of
	// the bytes before and after the target offset. The draft-side digests
	// were proven equal, so one copy of each is kept.
	prefixChecksum uint64
	suffixChecksum uint64
}

// verifyMutation re-opens the original and the draft after the build and
// proves, in four ordered phases, that the draft differs from the original
// in exactly the intended way:
//
//  1. Length: draft size == original size + the operation's delta.
//  2. Pre-position: bytes [0, position) are identical, checked byte-by-byte
//     in lockstep windows and cross-checked with rolling checksums.
//  3. At-position: the operation's own proof rule — replaced value present,
//     removed byte's successor shifted into its place, or inserted value
//     present with its displaced predecessor one later.
//  4. Post-position: both streams, already frame-aligned by phase 3, are
//     identical to EOF, with the same window and checksum discipline as
//     phase 2; both must hit EOF in the same iteration.
//
// Verification is read-only. On failure the draft is left in place for
// inspection; deleting it is the caller's job.
func verifyMutation(origPath, draftPath string, position int64, op Operation, oldByte byte, log *slog.Logger) (*verifyResult, error) {
	origInfo, err := os.Stat(origPath)
	if err != nil {
		return nil, fmt.Errorf("stat original for verification: %w", err)
	}
	draftInfo, err := os.Stat(draftPath)
	if err != nil {
		return nil, fmt.Errorf("stat draft for verification: %w", err)
	}

	res := &verifyResult{
		originalSize: origInfo.Size(),
		draftSize:    draftInfo.Size(),
	}

	expected := res.originalSize + op.SizeDelta()
	if res.draftSize != expected {
		return nil, newIntegrityFailure(origPath, position, "file size mismatch",
			map[string]string{
				"original": fmt.Sprintf("%d", res.originalSize),
				"draft":    fmt.Sprintf("%d", res.draftSize),
				"expected": fmt.Sprintf("%d", expected),
			})
	}

	orig, err := os.Open(origPath)
	if err != nil {
		return nil, fmt.Errorf("open original for verification: %w", err)
	}
	defer orig.Close()

	draft, err := os.Open(draftPath)
	if err != nil {
		return nil, fmt.Errorf("open draft for verification: %w", err)
	}
	defer draft.Close()

	if err := comparePrefix(orig, draft, position, res); err != nil {
		return nil, err
	}
	if err := verifyAtPosition(orig, draft, position, op, oldByte, origPath, log); err != nil {
		return nil, err
	}
	if err := compareSuffix(orig, draft, position, res); err != nil {
		return nil, err
	}

	log.Debug("verification passed",
		"original_size", res.originalSize,
		"draft_size", res.draftSize,
		"prefix_checksum", fmt.Sprintf("%016X", res.prefixChecksum),
		"suffix_checksum", fmt.Sprintf("%016X", res.suffixChecksum))

	return res, nil
}

// comparePrefix proves bytes [0, position) identical in both files,
// reading both in lockstep windows.
func comparePrefix(orig, draft *os.File, position int64, res *verifyResult) error {
	var origSum, draftSum rollingChecksum
	obuf := make([]byte, chunkSize)
	dbuf := make([]byte, chunkSize)

	var verified int64
	for verified < position {
		want := int64(chunkSize)
		if remaining := position - verified; remaining < want {
			want = remaining
		}

		on, err := readWindow(orig, obuf[:want])
		if err != nil {
			return fmt.Errorf("read original prefix: %w", err)
		}
		dn, err := readWindow(draft, dbuf[:want])
		if err != nil {
			return fmt.Errorf("read draft prefix: %w", err)
		}

		if on != dn {
			return newIntegrityFailure(orig.Name(), position, "pre-position window size mismatch",
				map[string]string{
					"offset":   fmt.Sprintf("%d", verified),
					"original": fmt.Sprintf("%d", on),
					"draft":    fmt.Sprintf("%d", dn),
				})
		}
		if on == 0 {
			return newIntegrityFailure(orig.Name(), position, "streams ended before target offset",
				map[string]string{"verified": fmt.Sprintf("%d", verified)})
		}

		for i := 0; i < on; i++ {
			if obuf[i] != dbuf[i] {
				return newIntegrityFailure(orig.Name(), position, "pre-position byte mismatch",
					map[string]string{
						"offset":   fmt.Sprintf("%d", verified+int64(i)),
						"original": fmt.Sprintf("0x%02X", obuf[i]),
						"draft":    fmt.Sprintf("0x%02X", dbuf[i]),
					})
			}
		}

		origSum.add(obuf[:on])
		draftSum.add(dbuf[:dn])
		verified += int64(on)
	}

	if origSum.sum64() != draftSum.sum64() {
		return newIntegrityFailure(orig.Name(), position, "pre-position checksum mismatch",
			map[string]string{
				"original": fmt.Sprintf("%016X", origSum.sum64()),
				"draft":    fmt.Sprintf("%016X", draftSum.sum64()),
			})
	}

	res.prefixChecksum = origSum.sum64()
	return nil
}

// verifyAtPosition applies the operation-specific proof rule at the target
// offset. Whatever single bytes it consumes from either stream leave the
// two streams frame-aligned for phase 4.
func verifyAtPosition(orig, draft *os.File, position int64, op Operation, oldByte byte, path string, log *slog.Logger) error {
	switch op.Kind {
	case KindReplace:
		ob, ok, err := readOne(orig)
		if err != nil {
			return fmt.Errorf("read original at target offset: %w", err)
		}
		if !ok {
			return newIntegrityFailure(path, position, "original ended before target offset", nil)
		}
		db, ok, err := readOne(draft)
		if err != nil {
			return fmt.Errorf("read draft at target offset: %w", err)
		}
		if !ok {
			return newIntegrityFailure(path, position, "draft ended before target offset", nil)
		}
		if ob != oldByte {
			return newIntegrityFailure(path, position, "original byte mismatch at target offset",
				map[string]string{
					"expected": fmt.Sprintf("0x%02X", oldByte),
					"actual":   fmt.Sprintf("0x%02X", ob),
				})
		}
		if db != op.Value {
			return newIntegrityFailure(path, position, "draft byte mismatch at target offset",
				map[string]string{
					"expected": fmt.Sprintf("0x%02X", op.Value),
					"actual":   fmt.Sprintf("0x%02X", db),
				})
		}
		if ob == db {
			log.Warn("byte value unchanged: same value written over itself",
				"position", position, "value", fmt.Sprintf("0x%02X", db))
		}

	case KindRemove:
		ob, ok, err := readOne(orig)
		if err != nil {
			return fmt.Errorf("read original at target offset: %w", err)
		}
		if !ok {
			return newIntegrityFailure(path, position, "original ended before target offset", nil)
		}
		if ob != oldByte {
			return newIntegrityFailure(path, position, "removed byte mismatch",
				map[string]string{
					"expected": fmt.Sprintf("0x%02X", oldByte),
					"actual":   fmt.Sprintf("0x%02X", ob),
				})
		}
		db, ok, err := readOne(draft)
		if err != nil {
			return fmt.Errorf("read draft at target offset: %w", err)
		}
		if !ok {
			// Removal of the final byte: nothing shifted, nothing to prove.
			return nil
		}
		onext, ok, err := readOne(orig)
		if err != nil {
			return fmt.Errorf("read original after target offset: %w", err)
		}
		if !ok {
			return newIntegrityFailure(path, position, "draft has more bytes than expected after removal position", nil)
		}
		// Frame-shift proof: the byte after the removed one must have
		// landed at the removed one's offset.
		if db != onext {
			return newIntegrityFailure(path, position, "frame-shift proof failed",
				map[string]string{
					"draft_at_position":    fmt.Sprintf("0x%02X", db),
					"original_at_position": fmt.Sprintf("0x%02X", onext),
					"original_offset":      fmt.Sprintf("%d", position+1),
				})
		}

	case KindAdd:
		db, ok, err := readOne(draft)
		if err != nil {
			return fmt.Errorf("read draft at target offset: %w", err)
		}
		if !ok {
			return newIntegrityFailure(path, position, "draft ended before target offset", nil)
		}
		if db != op.Value {
			return newIntegrityFailure(path, position, "inserted byte mismatch at target offset",
				map[string]string{
					"expected": fmt.Sprintf("0x%02X", op.Value),
					"actual":   fmt.Sprintf("0x%02X", db),
				})
		}
		ob, ok, err := readOne(orig)
		if err != nil {
			return fmt.Errorf("read original at target offset: %w", err)
		}
		if !ok {
			// Insertion at EOF (append): nothing was displaced.
			return nil
		}
		dnext, ok, err := readOne(draft)
		if err != nil {
			return fmt.Errorf("read draft after target offset: %w", err)
		}
		if !ok {
			return newIntegrityFailure(path, position, "original has more bytes than draft after insertion position", nil)
		}
		// Inverse frame-shift proof: the displaced byte must have landed
		// one offset later in the draft.
		if dnext != ob {
			return newIntegrityFailure(path, position, "frame-shift proof failed",
				map[string]string{
					"draft_after_position": fmt.Sprintf("0x%02X", dnext),
					"original_at_position": fmt.Sprintf("0x%02X", ob),
				})
		}
	}
	return nil
}

// compareSuffix proves the remainders of both streams identical to EOF.
// Phase 3 already consumed whatever single bytes realign the frames, so a
// plain lockstep comparison suffices; both sides must hit EOF together.
func compareSuffix(orig, draft *os.File, position int64, res *verifyResult) error {
	var origSum, draftSum rollingChecksum
	obuf := make([]byte, chunkSize)
	dbuf := make([]byte, chunkSize)

	var verified int64
	for {
		on, err := readWindow(orig, obuf)
		if err != nil {
			return fmt.Errorf("read original suffix: %w", err)
		}
		dn, err := readWindow(draft, dbuf)
		if err != nil {
			return fmt.Errorf("read draft suffix: %w", err)
		}

		if on != dn {
			return newIntegrityFailure(orig.Name(), position, "post-position streams reached EOF at different times",
				map[string]string{
					"offset":   fmt.Sprintf("+%d", verified),
					"original": fmt.Sprintf("%d", on),
					"draft":    fmt.Sprintf("%d", dn),
				})
		}
		if on == 0 {
			break
		}

		for i := 0; i < on; i++ {
			if obuf[i] != dbuf[i] {
				return newIntegrityFailure(orig.Name(), position, "post-position byte mismatch",
					map[string]string{
						"offset":   fmt.Sprintf("+%d", verified+int64(i)),
						"original": fmt.Sprintf("0x%02X", obuf[i]),
						"draft":    fmt.Sprintf("0x%02X", dbuf[i]),
					})
			}
		}

		origSum.add(obuf[:on])
		draftSum.add(dbuf[:dn])
		verified += int64(on)
	}

	if origSum.sum64() != draftSum.sum64() {
		return newIntegrityFailure(orig.Name(), position, "post-position checksum mismatch",
			map[string]string{
				"original": fmt.Sprintf("%016X", origSum.sum64()),
				"draft":    fmt.Sprintf("%016X", draftSum.sum64()),
			})
	}

	res.suffixChecksum = origSum.sum64()
	return nil
}

// readWindow fills buf as far as the stream allows. Returns 0 with a nil
// error at EOF, so lockstep callers can compare counts directly.
func readWindow(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	return n, err
}

// readOne reads a single byte; ok is false at EOF.
func readOne(r io.Reader) (b byte, ok bool, err error) {
	var one [1]byte
	if _, err := io.ReadFull(r, one[:]); err != nil {
		if err == io.EOF {
			return 0, false, nil
		}
		return 0, false, err
	}
	return one[0], true, nil
}
