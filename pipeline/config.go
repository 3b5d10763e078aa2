// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package pipeline

import "time"

// Config defines the tunable parameters of the chunk-generation pipeline.
//
// Fields:
//   - LevelThres: maximum number of chunks a worker may produce ahead of the consumer.
//   - ProducerIdleSleep: how long a producer goroutine sleeps when the level cap is hit.
//   - ConsumerIdleSleep: how long a blocking Pull sleeps between empty polls.
//   - Warner: destination for non-fatal warnings (misaligned seek, closed-slot release).
//   - Recorder: destination for pipeline metrics; no-op unless supplied.
type Config struct {
	// LevelThres caps the number of chunks a worker's producer goroutine may queue ahead
	// of the consumer. If zero, DefaultLevelThres is used.
	LevelThres int64

	// ProducerIdleSleep is the sleep interval a producer observes once LevelThres is hit.
	// If zero, DefaultProducerIdleSleep is used.
	ProducerIdleSleep time.Duration

	// ConsumerIdleSleep is the sleep interval between unsuccessful polls in a blocking Pull.
	// If zero, DefaultConsumerIdleSleep is used.
	ConsumerIdleSleep time.Duration

	// Warner receives non-fatal warnings. If nil, warnings are discarded.
	Warner Warner

	// Recorder receives pipeline metrics. If nil, observations are discarded.
	Recorder Recorder
}

// Default tuning constants for the pipeline, chosen to meet the cancellation- and
// pull-latency upper bounds the pipeline is contractually required to honor (roughly 10ms
// and 1ms respectively).
const (
	// DefaultLevelThres is the recommended maximum number of chunks queued ahead of the
	// consumer, per worker.
	DefaultLevelThres = 8

	// DefaultProducerIdleSleep is the producer's backoff when the level cap is hit.
	DefaultProducerIdleSleep = 10 * time.Millisecond

	// DefaultConsumerIdleSleep is the blocking-pull backoff between empty polls.
	DefaultConsumerIdleSleep = time.Millisecond
)

// DefaultConfig returns a Config populated with the recommended defaults.
func DefaultConfig() Config {
	return Config{
		LevelThres:        DefaultLevelThres,
		ProducerIdleSleep: DefaultProducerIdleSleep,
		ConsumerIdleSleep: DefaultConsumerIdleSleep,
		Warner:            noopWarner{},
		Recorder:          noopRecorder{},
	}
}

// normalize fills in zero-valued fields of cfg with their documented defaults, in place.
func (cfg *Config) normalize() {
	if cfg.LevelThres <= 0 {
		cfg.LevelThres = DefaultLevelThres
	}
	if cfg.ProducerIdleSleep <= 0 {
		cfg.ProducerIdleSleep = DefaultProducerIdleSleep
	}
	if cfg.ConsumerIdleSleep <= 0 {
		cfg.ConsumerIdleSleep = DefaultConsumerIdleSleep
	}
	if cfg.Warner == nil {
		cfg.Warner = noopWarner{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = noopRecorder{}
	}
}

// Option is a functional option for customizing a Config passed to NewAggregator.
type Option func(*Config)

// WithLevelThres overrides the maximum number of chunks queued ahead of the consumer.
func WithLevelThres(n int64) Option {
	return func(cfg *Config) { cfg.LevelThres = n }
}

// WithProducerIdleSleep overrides the producer backoff applied once the level cap is hit.
func WithProducerIdleSleep(d time.Duration) Option {
	return func(cfg *Config) { cfg.ProducerIdleSleep = d }
}

// WithConsumerIdleSleep overrides the blocking-pull backoff between empty polls.
func WithConsumerIdleSleep(d time.Duration) Option {
	return func(cfg *Config) { cfg.ConsumerIdleSleep = d }
}

// WithWarner sets the destination for non-fatal warnings.
func WithWarner(w Warner) Option {
	return func(cfg *Config) { cfg.Warner = w }
}

// WithRecorder sets the destination for pipeline metrics.
func WithRecorder(r Recorder) Option {
	return func(cfg *Config) { cfg.Recorder = r }
}
