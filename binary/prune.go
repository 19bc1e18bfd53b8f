package binary

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Prune removes every entry of root except the one named keep, returning the names
// of the removed entries.
// Cleanup is best effort: failures are logged and skipped, as the version being kept
// is already usable. Only call it after a successful installation, so a failed one
// never destroys the last working version.
func Prune(fs afero.Fs, root, keep string) []string {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		logwarn(fmt.Sprintf("failed to list %s: %s", root, err))
		return nil
	}

	var removed []string
	for _, entry := range entries {
		if entry.Name() == keep {
			continue
		}

		path := filepath.Join(root, entry.Name())
		if err := fs.RemoveAll(path); err != nil {
			logwarn(fmt.Sprintf("failed to remove %s: %s", path, err))
			continue
		}

		logdetail(fmt.Sprintf("removed stale %s", entry.Name()))
		removed = append(removed, entry.Name())
	}

	return removed
}
