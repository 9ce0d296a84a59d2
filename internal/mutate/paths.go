package mutate

import "path/filepath"

const (
	backupSuffix = ".backup"
	draftSuffix  = ".draft"
)

// siblingPaths derives the backup and draft paths for a target file. Both
// are siblings in the same directory, so the final rename never crosses a
// filesystem boundary.
func siblingPaths(path string) (backupPath, draftPath string, err error) {
	base := filepath.Base(path)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", "", newInvalidInput(path, 0, "path has no usable file name component")
	}
	dir := filepath.Dir(path)
	return filepath.Join(dir, base+backupSuffix), filepath.Join(dir, base+draftSuffix), nil
}
