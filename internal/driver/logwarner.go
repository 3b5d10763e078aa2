package driver

import (
	"github.com/sirupsen/logrus"

	"github.com/sixafter/disktest/pipeline"
)

// LogrusWarner adapts a *logrus.Logger to pipeline.Warner, so the pipeline core's non-fatal
// warnings (misaligned activation, release to a closed buffer slot) surface through the same
// logger the driver itself uses.
type LogrusWarner struct {
	Logger *logrus.Logger
}

var _ pipeline.Warner = LogrusWarner{}

// Warnf implements pipeline.Warner.
func (w LogrusWarner) Warnf(format string, args ...any) {
	w.Logger.Warnf(format, args...)
}
