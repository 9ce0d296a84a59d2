package mutate

import (
	"errors"
	"fmt"
	"os"
)

// validateRequest checks that the request can be applied to the file as it
// exists on disk and returns the file's current size. Pure metadata read;
// no side effects.
//
// Replace and Remove require the position to address an existing byte
// (position < size), which also rules out empty files. Add addresses a gap
// rather than a byte, so position == size is valid and means append; by
// the same rule an empty file accepts an Add at position 0.
func validateRequest(req Request) (int64, error) {
	info, err := os.Stat(req.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, newNotFound(req.Path)
		}
		return 0, fmt.Errorf("stat target: %w", err)
	}

	if !info.Mode().IsRegular() {
		return 0, newInvalidInput(req.Path, req.Position, "target path is not a regular file")
	}

	size := info.Size()

	if req.Position < 0 {
		return 0, newInvalidInput(req.Path, req.Position, "byte position is negative")
	}

	switch req.Op.Kind {
	case KindAdd:
		if req.Position > size {
			return 0, newInvalidInput(req.Path, req.Position,
				fmt.Sprintf("byte position %d exceeds file size %d (valid range for add: 0-%d)",
					req.Position, size, size))
		}
	case KindReplace, KindRemove:
		if size == 0 {
			return 0, newInvalidInput(req.Path, req.Position, "cannot edit byte in empty file")
		}
		if req.Position >= size {
			return 0, newInvalidInput(req.Path, req.Position,
				fmt.Sprintf("byte position %d exceeds file size %d (valid range: 0-%d)",
					req.Position, size, size-1))
		}
	default:
		return 0, newInvalidInput(req.Path, req.Position,
			fmt.Sprintf("unknown operation kind %q", req.Op.Kind))
	}

	return size, nil
}
