package driver

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/sixafter/disktest/pipeline"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTempFile(t *testing.T) (*os.File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "device.img")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	assert.NoError(t, err)
	return f, path
}

func Test_Driver_WriteThenVerify_RoundTrips(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	file, path := newTempFile(t)
	defer file.Close()

	agg, err := pipeline.NewAggregator(pipeline.GeneratorCRC, []byte("driver-seed"), 2)
	is.NoError(err)
	defer agg.Close()

	policy := DevicePolicy{Path: path}
	drv := New(agg, file, policy, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const size = 256 * 1024
	report, err := drv.Write(ctx, 0, size)
	is.NoError(err)
	is.EqualValues(size, report.BytesProcessed)

	verifyAgg, err := pipeline.NewAggregator(pipeline.GeneratorCRC, []byte("driver-seed"), 2)
	is.NoError(err)
	defer verifyAgg.Close()

	verifyFile, err := os.Open(path)
	is.NoError(err)
	defer verifyFile.Close()

	verifyDrv := New(verifyAgg, verifyFile, policy, testLogger())
	report, err = verifyDrv.Verify(ctx, 0, size)
	is.NoError(err)
	is.EqualValues(size, report.BytesProcessed)
	is.Nil(report.MismatchOffset)
}

func Test_Driver_Verify_DetectsMismatch(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	file, path := newTempFile(t)
	defer file.Close()

	agg, err := pipeline.NewAggregator(pipeline.GeneratorCRC, []byte("driver-seed"), 1)
	is.NoError(err)
	defer agg.Close()

	policy := DevicePolicy{Path: path}
	drv := New(agg, file, policy, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const size = 64 * 1024
	_, err = drv.Write(ctx, 0, size)
	is.NoError(err)

	// Corrupt a single byte in the middle of the written range.
	_, err = file.WriteAt([]byte{0xFF}, size/2)
	is.NoError(err)

	verifyAgg, err := pipeline.NewAggregator(pipeline.GeneratorCRC, []byte("driver-seed"), 1)
	is.NoError(err)
	defer verifyAgg.Close()

	verifyFile, err := os.Open(path)
	is.NoError(err)
	defer verifyFile.Close()

	verifyDrv := New(verifyAgg, verifyFile, policy, testLogger())
	report, err := verifyDrv.Verify(ctx, 0, size)

	var mismatch *MismatchError
	is.ErrorAs(err, &mismatch)
	is.ErrorIs(err, ErrMismatch)
	is.NotNil(report.MismatchOffset)
	is.EqualValues(size/2, *report.MismatchOffset)
}

func Test_Driver_Verify_ShortDeviceStopsCleanly(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	file, path := newTempFile(t)
	defer file.Close()

	agg, err := pipeline.NewAggregator(pipeline.GeneratorCRC, []byte("driver-seed"), 1)
	is.NoError(err)
	defer agg.Close()

	policy := DevicePolicy{Path: path}
	drv := New(agg, file, policy, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const written = 32 * 1024
	_, err = drv.Write(ctx, 0, written)
	is.NoError(err)

	verifyAgg, err := pipeline.NewAggregator(pipeline.GeneratorCRC, []byte("driver-seed"), 1)
	is.NoError(err)
	defer verifyAgg.Close()

	verifyFile, err := os.Open(path)
	is.NoError(err)
	defer verifyFile.Close()

	verifyDrv := New(verifyAgg, verifyFile, policy, testLogger())
	// Ask for more bytes than the file actually holds; Verify must stop at EOF without error.
	report, err := verifyDrv.Verify(ctx, 0, written*4)
	is.NoError(err)
	is.EqualValues(written, report.BytesProcessed)
}

func Test_Driver_Write_ContextCancellationSurfacesAsAborted(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	file, path := newTempFile(t)
	defer file.Close()

	agg, err := pipeline.NewAggregator(pipeline.GeneratorCRC, []byte("driver-seed"), 1)
	is.NoError(err)
	defer agg.Close()

	policy := DevicePolicy{Path: path}
	drv := New(agg, file, policy, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = drv.Write(ctx, 0, 1<<30)
	is.ErrorIs(err, ErrAborted)
	is.True(errors.Is(err, context.Canceled))
}

func Test_Driver_Verify_ContextCancellationSurfacesAsAborted(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	file, path := newTempFile(t)
	defer file.Close()

	writeAgg, err := pipeline.NewAggregator(pipeline.GeneratorCRC, []byte("driver-seed"), 1)
	is.NoError(err)
	defer writeAgg.Close()

	policy := DevicePolicy{Path: path}
	writeDrv := New(writeAgg, file, policy, testLogger())

	ctx := context.Background()
	_, err = writeDrv.Write(ctx, 0, 1<<20)
	is.NoError(err)

	verifyAgg, err := pipeline.NewAggregator(pipeline.GeneratorCRC, []byte("driver-seed"), 1)
	is.NoError(err)
	defer verifyAgg.Close()

	verifyFile, err := os.Open(path)
	is.NoError(err)
	defer verifyFile.Close()

	cancelledCtx, cancel := context.WithCancel(context.Background())
	cancel()

	verifyDrv := New(verifyAgg, verifyFile, policy, testLogger())
	_, err = verifyDrv.Verify(cancelledCtx, 0, 1<<20)
	is.ErrorIs(err, ErrAborted)
}
