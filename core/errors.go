package core

import (
	"fmt"
	"strings"

	"github.com/ArnoldoM23/pess/schema"
)

// UnsupportedSourceError is returned by the ingestor when a request arrives
// from an unknown source tag.
type UnsupportedSourceError struct {
	Source schema.SourceTag
}

func (e *UnsupportedSourceError) Error() string {
	supported := make([]string, len(schema.SupportedSources))
	for i, s := range schema.SupportedSources {
		supported[i] = string(s)
	}
	return fmt.Sprintf("unsupported source %q: supported sources are %s", e.Source, strings.Join(supported, ", "))
}

// MissingFieldError is returned by the ingestor when one or more required
// fields are absent. It always names every missing field, not just the first.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// TypeValidationError is returned by the ingestor when a field holds a value
// of the wrong type.
type TypeValidationError struct {
	Field  string
	Reason string
}

func (e *TypeValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// AlgorithmComputeError wraps a defensive failure inside the scoring algorithm.
// The evaluator converts it to a zero-score output rather than propagating it.
type AlgorithmComputeError struct {
	SessionID string
	Err       error
}

func (e *AlgorithmComputeError) Error() string {
	return fmt.Sprintf("score computation failed for session %s: %v", e.SessionID, e.Err)
}

func (e *AlgorithmComputeError) Unwrap() error { return e.Err }

// PersistenceError is a per-record store failure. It is non-fatal to the batch
// and surfaced to the caller for retry.
type PersistenceError struct {
	ScoringID string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed for record %s: %v", e.ScoringID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DownstreamNotifyError is a per-sink delivery failure. It is logged and
// recorded in the emission result but never fails the emit call.
type DownstreamNotifyError struct {
	Sink string
	Err  error
}

func (e *DownstreamNotifyError) Error() string {
	return fmt.Sprintf("notification to sink %s failed: %v", e.Sink, e.Err)
}

func (e *DownstreamNotifyError) Unwrap() error { return e.Err }
