// Package asq3 holds the pure screening rules: age interval resolution,
// domain scoring, threshold classification, aggregation, progress and the
// immutable reference catalog they read from. Nothing here touches storage.
package asq3
