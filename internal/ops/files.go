package ops

import (
	"io"
	"os"
	"strings"

	"github.com/hpungsan/uwu/internal/errors"
)

// ReadInputFile reads a whole input file. Symlinks are followed.
func ReadInputFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.NewInvalidRequest("path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return "", errors.NewIO(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", errors.NewIO(err)
	}
	return string(data), nil
}

// WriteOutputFile writes text to path, creating or truncating it with 0644
// permissions. The final path component must not be a symlink.
func WriteOutputFile(path, text string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewInvalidRequest("path is required")
	}
	f, err := openFileNoFollow(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, text); err != nil {
		f.Close()
		return errors.NewIO(err)
	}
	if err := f.Close(); err != nil {
		return errors.NewIO(err)
	}
	return nil
}
