// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteScores prints pipeline scoring results using the configured output format.
func (ow *OutWriter) WriteScores(results []schema.PipelineResult, cfg *contract.Config, duration time.Duration) error {
	return WriteScoreResults(results, cfg, duration)
}

// WriteAnalytics prints template performance aggregates using the configured output format.
func (ow *OutWriter) WriteAnalytics(templates []schema.TemplateRecord, cfg *contract.Config) error {
	return WriteTemplateAnalytics(templates, cfg)
}

// WriteRecent prints recently persisted scores using the configured output format.
func (ow *OutWriter) WriteRecent(scores []schema.ScoreRecord, cfg *contract.Config) error {
	return WriteRecentScores(scores, cfg)
}

// WriteHealth prints pipeline stage health using the configured output format.
func (ow *OutWriter) WriteHealth(health schema.PipelineHealth, cfg *contract.Config) error {
	return WritePipelineHealth(health, cfg)
}

// WriteSession prints one session aggregate using the configured output format.
func (ow *OutWriter) WriteSession(rec *schema.SessionRecord, cfg *contract.Config) error {
	return WriteSessionSummary(rec, cfg)
}
