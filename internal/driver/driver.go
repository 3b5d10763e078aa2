package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/sixafter/disktest/pipeline"
)

// logThreshold is how many bytes of progress accumulate between progress log lines, ported
// from the original collaborator's LOGTHRES.
const logThreshold = 10 * 1024 * 1024

// Driver is the consumer side of the pipeline: it owns a device and an Aggregator, and drives
// write or verify passes against the pipeline's deterministic byte stream.
type Driver struct {
	agg    *pipeline.Aggregator
	file   *os.File
	policy DevicePolicy
	log    *logrus.Logger
}

// New constructs a Driver bound to an already-opened device and its DevicePolicy.
func New(agg *pipeline.Aggregator, file *os.File, policy DevicePolicy, log *logrus.Logger) *Driver {
	return &Driver{agg: agg, file: file, policy: policy, log: log}
}

// Write activates the aggregator at seek, then writes its deterministic stream to the device
// starting there, stopping after maxBytes bytes or at end-of-device, whichever comes first. An
// ENOSPC write error is treated as a successful end-of-device condition rather than a failure,
// matching the original collaborator's policy.
func (d *Driver) Write(ctx context.Context, seek, maxBytes uint64) (RunReport, error) {
	start := time.Now()
	d.log.Infof("writing %s starting at offset %s", d.policy.Path, humanize.Comma(int64(seek)))

	adjusted, err := d.agg.Activate(seek)
	if err != nil {
		return RunReport{}, fmt.Errorf("driver: activate: %w", err)
	}
	if _, err := d.file.Seek(int64(adjusted), io.SeekStart); err != nil {
		return RunReport{}, fmt.Errorf("driver: seek to %d: %w", adjusted, err)
	}

	var bytesWritten, logCount uint64
	bytesLeft := maxBytes

	for bytesLeft > 0 {
		chunk, err := d.agg.Pull(ctx)
		if err != nil {
			return d.finalizeWrite(bytesWritten, start, wrapPullErr(err))
		}

		writeLen := uint64(len(chunk.Data))
		if writeLen > bytesLeft {
			writeLen = bytesLeft
		}

		_, werr := d.file.Write(chunk.Data[:writeLen])
		chunk.Release()
		if werr != nil {
			if errors.Is(werr, syscall.ENOSPC) {
				return d.finalizeWrite(bytesWritten, start, nil)
			}
			return d.finalizeWrite(bytesWritten, start, fmt.Errorf("driver: write error: %w", werr))
		}

		bytesWritten += writeLen
		bytesLeft -= writeLen
		logCount += writeLen
		if logCount >= logThreshold {
			d.log.Infof("wrote %s", humanize.Bytes(bytesWritten))
			logCount -= logThreshold
		}
	}

	return d.finalizeWrite(bytesWritten, start, nil)
}

// wrapPullErr turns a context cancellation observed during Pull into ErrAborted, leaving any
// other error (a generator seek failure) untouched.
func wrapPullErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return err
}

func (d *Driver) finalizeWrite(bytesWritten uint64, start time.Time, cause error) (RunReport, error) {
	report := RunReport{Policy: d.policy, BytesProcessed: bytesWritten, Elapsed: time.Since(start)}
	if cause != nil {
		d.log.Warnf("write stopped after %s: %v", humanize.Bytes(bytesWritten), cause)
		return report, cause
	}
	d.log.Infof("done, wrote %s, syncing", humanize.Bytes(bytesWritten))
	if err := d.file.Sync(); err != nil {
		return report, fmt.Errorf("driver: sync: %w", err)
	}
	return report, nil
}

// Verify activates the aggregator at seek, then compares the device's contents starting there
// against its deterministic stream, stopping after maxBytes bytes, at end-of-device, or at the
// first mismatch, whichever comes first.
func (d *Driver) Verify(ctx context.Context, seek, maxBytes uint64) (RunReport, error) {
	start := time.Now()
	d.log.Infof("verifying %s starting at offset %s", d.policy.Path, humanize.Comma(int64(seek)))

	adjusted, err := d.agg.Activate(seek)
	if err != nil {
		return RunReport{}, fmt.Errorf("driver: activate: %w", err)
	}
	if _, err := d.file.Seek(int64(adjusted), io.SeekStart); err != nil {
		return RunReport{}, fmt.Errorf("driver: seek to %d: %w", adjusted, err)
	}

	var bytesRead, logCount uint64
	bytesLeft := maxBytes
	readBuf := make([]byte, d.agg.ChunkSize())

	for bytesLeft > 0 {
		readLen := uint64(len(readBuf))
		if readLen > bytesLeft {
			readLen = bytesLeft
		}

		n, rerr := io.ReadFull(d.file, readBuf[:readLen])
		if n > 0 {
			chunk, perr := d.agg.Pull(ctx)
			if perr != nil {
				return d.finalizeVerify(bytesRead, nil, start, wrapPullErr(perr))
			}

			for i := 0; i < n; i++ {
				if readBuf[i] != chunk.Data[i] {
					off := bytesRead + uint64(i)
					chunk.Release()
					return d.finalizeVerify(bytesRead, &off, start, &MismatchError{Offset: off})
				}
			}
			chunk.Release()

			bytesRead += uint64(n)
			bytesLeft -= uint64(n)
			logCount += uint64(n)
			if logCount >= logThreshold {
				d.log.Infof("verified %s", humanize.Bytes(bytesRead))
				logCount -= logThreshold
			}
		}

		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			return d.finalizeVerify(bytesRead, nil, start, nil)
		}
		if rerr != nil {
			return d.finalizeVerify(bytesRead, nil, start, fmt.Errorf("driver: read error at %s: %w", humanize.Bytes(bytesRead), rerr))
		}
	}

	return d.finalizeVerify(bytesRead, nil, start, nil)
}

func (d *Driver) finalizeVerify(bytesRead uint64, mismatchOffset *uint64, start time.Time, cause error) (RunReport, error) {
	report := RunReport{Policy: d.policy, BytesProcessed: bytesRead, Elapsed: time.Since(start), MismatchOffset: mismatchOffset}
	if cause != nil {
		d.log.Warnf("verify stopped after %s: %v", humanize.Bytes(bytesRead), cause)
		return report, cause
	}
	d.log.Infof("done, verified %s", humanize.Bytes(bytesRead))
	return report, nil
}
