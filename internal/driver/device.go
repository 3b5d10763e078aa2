package driver

import (
	"fmt"
	"os"
)

// DevicePolicy describes how a target device or file was actually opened: the path given by
// the caller, whether O_DIRECT was requested, and whether the underlying filesystem honored
// it. Surfaced in logs and in the RunReport so an operator can tell a buffered run from a
// direct one.
type DevicePolicy struct {
	Path          string
	DirectWanted  bool
	DirectHonored bool
}

// OpenOption configures OpenDevice.
type OpenOption struct {
	// Direct requests O_DIRECT (platform-dependent; see openDirect).
	Direct bool
	// Write opens the file for writing (O_RDWR|O_CREATE) instead of read-only.
	Write bool
}

// OpenDevice opens path under the given options, returning the file, the policy that was
// actually achieved, and any error. When Direct is requested but the platform or filesystem
// rejects O_DIRECT, OpenDevice falls back to a normal buffered open and reports that in the
// returned policy rather than failing the run.
func OpenDevice(path string, opt OpenOption) (*os.File, DevicePolicy, error) {
	policy := DevicePolicy{Path: path, DirectWanted: opt.Direct}

	if opt.Direct {
		f, err := openDirect(path, opt.Write)
		if err == nil {
			policy.DirectHonored = true
			return f, policy, nil
		}
	}

	flag := os.O_RDONLY
	if opt.Write {
		flag = os.O_RDWR | os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, DevicePolicy{}, fmt.Errorf("driver: open %s: %w", path, err)
	}
	return f, policy, nil
}
