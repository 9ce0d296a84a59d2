package mutate

import (
	"fmt"
	"io"
	"os"
)

// createBackup copies src to dst byte-for-byte, preserving the source's
// permission bits. The backup must exist before any draft work starts; a
// copy failure fails the whole operation.
func createBackup(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat for backup: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open original for backup: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy to backup: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("sync backup: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("close backup: %w", err)
	}

	return nil
}

// removeBackup deletes the backup after a successful swap. The caller
// treats a failure here as a non-fatal warning; the backup must never be
// deleted before the swap succeeds.
func removeBackup(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove backup: %w", err)
	}
	return nil
}
