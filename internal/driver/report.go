package driver

import "time"

// RunReport summarizes a completed write or verify pass.
type RunReport struct {
	Policy         DevicePolicy
	BytesProcessed uint64
	Elapsed        time.Duration
	MismatchOffset *uint64 // nil unless a verify pass found a mismatch
}

// ThroughputBytesPerSec returns BytesProcessed / Elapsed, or 0 if Elapsed is zero.
func (r RunReport) ThroughputBytesPerSec() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.BytesProcessed) / r.Elapsed.Seconds()
}
