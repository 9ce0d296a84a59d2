package mutate

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const (
	// chunkSize is the bucket-brigade window capacity. Every read and
	// write moves at most this many bytes.
	chunkSize = 64

	// maxChunks caps the build loop at ~1 GiB of 64-byte chunks. A source
	// that exceeds it fails the operation instead of spinning forever.
	maxChunks = 16 * 1024 * 1024
)

// buildResult records what the builder observed while constructing the
// draft.
type buildResult struct {
	// applied reports whether the target offset was visited. The
	// validator makes a miss unreachable; the builder checks anyway.
	applied bool

	// oldByte is the byte found at the target offset in the original:
	// the byte replaced (KindReplace) or removed (KindRemove). Unset for
	// KindAdd, which displaces rather than consumes a byte.
	oldByte byte

	bytesRead    int64
	bytesWritten int64
	chunks       int64
}

// buildDraft streams the original through a fixed-size buffer into a new
// draft file, applying op at position. The original is opened read-only
// and never written. On any error the partial draft is deleted before
// returning; original and backup stay as they were. Both files are closed
// before buildDraft returns, so the draft is safe to rename afterwards.
func buildDraft(srcPath, draftPath string, position int64, op Operation, log *slog.Logger) (*buildResult, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("open original: %w", err)
	}
	defer src.Close()

	draft, err := os.OpenFile(draftPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}

	// Single cleanup path for every failure below: no partial draft may
	// survive a failed build.
	fail := func(e error) (*buildResult, error) {
		draft.Close()
		os.Remove(draftPath)
		return nil, e
	}

	res := &buildResult{}
	buf := make([]byte, chunkSize)

	for {
		if res.chunks >= maxChunks {
			return fail(newIntegrityFailure(srcPath, position,
				"chunk ceiling exceeded: file too large or runaway read loop",
				map[string]string{
					"max_chunks": fmt.Sprintf("%d", maxChunks),
					"bytes_read": fmt.Sprintf("%d", res.bytesRead),
				}))
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			res.chunks++
			chunkStart := res.bytesRead
			chunkEnd := chunkStart + int64(n)

			if position >= chunkStart && position < chunkEnd {
				if err := applyInChunk(draft, buf[:n], int(position-chunkStart), op, position, res, log); err != nil {
					return fail(err)
				}
				res.applied = true
			} else {
				if err := writeAll(draft, buf[:n], position); err != nil {
					return fail(err)
				}
				res.bytesWritten += int64(n)
			}

			res.bytesRead = chunkEnd
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fail(fmt.Errorf("read chunk %d: %w", res.chunks+1, rerr))
		}
	}

	// Add at position == size addresses the gap one past the final byte,
	// which the chunk loop never visits: append lands here.
	if !res.applied && op.Kind == KindAdd && position == res.bytesRead {
		if err := writeAll(draft, []byte{op.Value}, position); err != nil {
			return fail(err)
		}
		res.bytesWritten++
		res.applied = true
		log.Debug("appended byte", "position", position, "value", fmt.Sprintf("0x%02X", op.Value))
	}

	if !res.applied {
		return fail(newIntegrityFailure(srcPath, position,
			"target offset was never reached during draft construction",
			map[string]string{"bytes_read": fmt.Sprintf("%d", res.bytesRead)}))
	}

	if err := draft.Sync(); err != nil {
		return fail(fmt.Errorf("sync draft: %w", err))
	}
	if err := draft.Close(); err != nil {
		os.Remove(draftPath)
		return nil, fmt.Errorf("close draft: %w", err)
	}

	log.Debug("draft built",
		"bytes_read", res.bytesRead,
		"bytes_written", res.bytesWritten,
		"chunks", res.chunks)

	return res, nil
}

// applyInChunk writes the one chunk that contains the target offset,
// splitting it into the pre-target slice, the operation's action at the
// offset, and the post-target slice.
func applyInChunk(draft *os.File, chunk []byte, local int, op Operation, position int64, res *buildResult, log *slog.Logger) error {
	switch op.Kind {
	case KindReplace:
		res.oldByte = chunk[local]
		chunk[local] = op.Value
		if err := writeAll(draft, chunk, position); err != nil {
			return err
		}
		res.bytesWritten += int64(len(chunk))
		log.Debug("replaced byte",
			"position", position,
			"old", fmt.Sprintf("0x%02X", res.oldByte),
			"new", fmt.Sprintf("0x%02X", op.Value))

	case KindRemove:
		res.oldByte = chunk[local]
		if local > 0 {
			if err := writeAll(draft, chunk[:local], position); err != nil {
				return err
			}
			res.bytesWritten += int64(local)
		}
		// The byte at local is skipped: that is the removal.
		if local+1 < len(chunk) {
			if err := writeAll(draft, chunk[local+1:], position); err != nil {
				return err
			}
			res.bytesWritten += int64(len(chunk) - local - 1)
		}
		log.Debug("removed byte",
			"position", position,
			"value", fmt.Sprintf("0x%02X", res.oldByte))

	case KindAdd:
		if local > 0 {
			if err := writeAll(draft, chunk[:local], position); err != nil {
				return err
			}
		}
		if err := writeAll(draft, []byte{op.Value}, position); err != nil {
			return err
		}
		if err := writeAll(draft, chunk[local:], position); err != nil {
			return err
		}
		res.bytesWritten += int64(len(chunk)) + 1
		log.Debug("inserted byte",
			"position", position,
			"value", fmt.Sprintf("0x%02X", op.Value))
	}
	return nil
}

// writeAll writes p fully to the draft. A short write is an integrity
// failure: bytes written must equal bytes intended.
func writeAll(draft *os.File, p []byte, position int64) error {
	n, err := draft.Write(p)
	if err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	if n != len(p) {
		return newIntegrityFailure(draft.Name(), position, "incomplete write to draft",
			map[string]string{
				"expected": fmt.Sprintf("%d", len(p)),
				"actual":   fmt.Sprintf("%d", n),
			})
	}
	return nil
}
