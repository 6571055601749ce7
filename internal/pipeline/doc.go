// Package pipeline scores or tunes a primer panel against its templates on
// a bounded worker pool and hands results to a visit callback in panel
// order, whatever order the workers finish in.
package pipeline
