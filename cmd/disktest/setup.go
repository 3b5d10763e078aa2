package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/sixafter/disktest/internal/driver"
	"github.com/sixafter/disktest/internal/metrics"
	"github.com/sixafter/disktest/pipeline"
)

// runSetup bundles everything a write or verify invocation needs, assembled once from merged
// config-file and flag values.
type runSetup struct {
	ctx    context.Context
	cancel context.CancelFunc
	drv    *driver.Driver
	file   *os.File
	log    *logrus.Logger
}

// prepareRun merges the optional config file under CLI flags, opens the device at path, wires
// the pipeline core and its metrics/warning side channels, and registers signal-based
// cancellation. forWrite selects whether the device is opened for writing or read-only.
func prepareRun(path string, forWrite bool) (*runSetup, error) {
	fileCfg, err := loadFileConfig(globalFlags.configPath)
	if err != nil {
		return nil, err
	}

	seed := globalFlags.seed
	if seed == "" {
		seed = fileCfg.Seed
	}
	if seed == "" {
		return nil, fmt.Errorf("disktest: --seed is required")
	}

	genName := globalFlags.generator
	if !rootCmd.PersistentFlags().Changed("generator") && fileCfg.Generator != "" {
		genName = fileCfg.Generator
	}
	genType, err := pipeline.ParseGeneratorType(genName)
	if err != nil {
		return nil, err
	}

	workers := globalFlags.workers
	if workers == 0 && fileCfg.Workers != 0 {
		workers = fileCfg.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	direct := globalFlags.directIO
	if !rootCmd.PersistentFlags().Changed("direct-io") && fileCfg.DirectIO != nil {
		direct = *fileCfg.DirectIO
	}

	metricsAddr := globalFlags.metricsAddr
	if metricsAddr == "" {
		metricsAddr = fileCfg.MetricsAddr
	}

	log := newLogger()

	file, policy, err := driver.OpenDevice(path, driver.OpenOption{Direct: direct, Write: forWrite})
	if err != nil {
		return nil, err
	}
	if direct && !policy.DirectHonored {
		log.Warnf("O_DIRECT was requested for %s but is not available; falling back to buffered I/O", path)
	}

	var rec pipeline.Recorder
	if metricsAddr != "" {
		m := metrics.New()
		rec = m
		go serveMetrics(metricsAddr, m, log)
	}

	opts := []pipeline.Option{pipeline.WithWarner(driver.LogrusWarner{Logger: log})}
	if rec != nil {
		opts = append(opts, pipeline.WithRecorder(rec))
	}

	agg, err := pipeline.NewAggregator(genType, []byte(seed), workers, opts...)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	drv := driver.New(agg, file, policy, log)

	return &runSetup{ctx: ctx, cancel: cancel, drv: drv, file: file, log: log}, nil
}

func (rs *runSetup) close() {
	rs.cancel()
	_ = rs.file.Close()
}

func serveMetrics(addr string, m *metrics.Metrics, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	log.Infof("serving metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil { //nolint:gosec
		log.Warnf("metrics server stopped: %v", err)
	}
}
