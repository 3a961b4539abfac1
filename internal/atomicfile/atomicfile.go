// Package atomicfile replaces files through a temporary sibling and a rename,
// so readers see either the old contents or the new ones.
package atomicfile

import (
	"os"
	"path/filepath"
)

// Write replaces dst with b. The temporary file lives in dst's directory and
// is removed when any step before the rename fails.
func Write(dst string, b []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
