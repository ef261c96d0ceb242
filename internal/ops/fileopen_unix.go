//go:build !windows

package ops

import (
	stderrors "errors"
	"fmt"
	"os"
	"syscall"

	"github.com/hpungsan/uwu/internal/errors"
)

// openFileNoFollow opens a file for writing with O_NOFOLLOW so an --output
// path that is a symlink is refused. O_CLOEXEC prevents FD leaks across exec.
//
// Note: O_NOFOLLOW only protects the final path component.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidRequest("cannot write to symlink")
		}
		return nil, errors.NewIO(fmt.Errorf("open %s: %w", path, err))
	}
	return os.NewFile(uintptr(fd), path), nil
}
