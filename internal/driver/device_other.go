//go:build !linux

package driver

import (
	"errors"
	"os"
)

// openDirect is unsupported outside Linux; OpenDevice always falls back to a buffered open.
func openDirect(string, bool) (*os.File, error) {
	return nil, errors.New("driver: O_DIRECT is only supported on linux")
}
