package sink

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

// LogSink writes a one-line summary of each emitted score. It is the default
// sink when no webhook is configured.
type LogSink struct {
	w       io.Writer
	enabled bool
}

var _ contract.NotifySink = &LogSink{} // Compile-time check

// NewLogSink creates a log sink writing to stderr.
func NewLogSink(enabled bool) *LogSink {
	return &LogSink{w: os.Stderr, enabled: enabled}
}

// NewLogSinkTo creates a log sink writing to the given writer.
func NewLogSinkTo(w io.Writer, enabled bool) *LogSink {
	return &LogSink{w: w, enabled: enabled}
}

// Name implements the NotifySink interface.
func (s *LogSink) Name() string {
	return "log"
}

// Enabled implements the NotifySink interface.
func (s *LogSink) Enabled() bool {
	return s.enabled
}

// Notify implements the NotifySink interface.
func (s *LogSink) Notify(_ context.Context, n *schema.Notification) error {
	_, err := fmt.Fprintf(s.w, "score emitted: session=%s scoring_id=%s template=%s@%s score=%.1f (%s) alerts=%d\n",
		n.SessionID, n.ScoringID,
		n.TemplateInfo.TemplateName, n.TemplateInfo.TemplateVersion,
		n.FinalScore, contract.GetPlainLabel(n.FinalScore), len(n.Alerts))
	return err
}
