//go:build windows

package ops

import (
	"fmt"
	"os"

	"github.com/hpungsan/uwu/internal/errors"
)

// openFileNoFollow opens a file for writing.
// On Windows, O_NOFOLLOW is not available. Symlink attacks are less common
// on Windows due to privilege requirements for symlink creation.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, errors.NewIO(fmt.Errorf("open %s: %w", path, err))
	}
	return f, nil
}
