//go:build linux

package driver

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// openDirect opens path with O_DIRECT on Linux. Many filesystems (tmpfs, overlayfs, some
// network filesystems) reject O_DIRECT with EINVAL; callers treat that as a signal to retry
// without it rather than as a fatal error.
func openDirect(path string, write bool) (*os.File, error) {
	flag := unix.O_DIRECT | os.O_RDONLY
	if write {
		flag = unix.O_DIRECT | os.O_RDWR | os.O_CREATE
	}
	fd, err := unix.Open(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("driver: O_DIRECT open %s: %w", path, err)
	}
	return os.NewFile(uintptr(fd), path), nil
}
