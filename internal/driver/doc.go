// Package driver is the pipeline's only I/O-performing consumer: it pulls chunks from a
// pipeline.Aggregator and either writes them to a device or compares them against data already
// on one, reporting progress and producing a RunReport when done.
package driver
