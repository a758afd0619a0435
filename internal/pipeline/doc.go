// Package pipeline orchestrates a screening run and a hit-validation run as
// a sequence of named steps.
//
// A screening run parses plate exports, drops plates failing the Z-factor
// filter, parses the transfer logs and combines both into per-compound
// metrics. A hit-validation run fits dose-response curves over long-format
// points and classifies every compound. Each run carries one trace id, logs
// every step and records step durations and counts on the pipeline metrics.
package pipeline
