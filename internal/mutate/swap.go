package mutate

import (
	"os"
	"path/filepath"
)

// promote renames the verified draft over the original. Strict failure
// policy: if the rename fails, original, backup and draft are all left in
// place untouched for manual recovery — the draft's bytes are never copied
// over the original.
func promote(draftPath, origPath string, position int64) error {
	if err := os.Rename(draftPath, origPath); err != nil {
		return newSwapFailure(origPath, position, err)
	}
	// Best-effort fsync of the parent directory so the rename itself is
	// durable. The swap already succeeded; a failure here is ignored.
	syncDir(origPath)
	return nil
}

// syncDir fsyncs the directory containing path, best effort.
func syncDir(path string) {
	dir, err := os.Open(filepath.Dir(path))
	if err != nil {
		return
	}
	defer dir.Close()
	dir.Sync()
}
