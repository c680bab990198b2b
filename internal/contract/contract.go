// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/ArnoldoM23/pess/schema"
)

// RecordStore defines persistence for scored sessions. Implementations must make
// SaveScore atomic per record: the score insert and both aggregate upserts commit
// or roll back together, so one failed record never leaves partial aggregates.
type RecordStore interface {
	// SaveScore persists one score record and upserts the session and template
	// aggregates derived from it, all in a single transaction.
	SaveScore(ctx context.Context, rec *schema.ScoreRecord) error

	// SaveFeedback persists one feedback submission.
	SaveFeedback(ctx context.Context, fb *schema.FeedbackData) error

	// GetFeedback returns all feedback linked to a scoring ID.
	GetFeedback(ctx context.Context, scoringID string) ([]schema.FeedbackData, error)

	// GetSessionFeedback returns all feedback recorded for a session. The
	// pipeline consults it when a scoring request carries no feedback of
	// its own.
	GetSessionFeedback(ctx context.Context, sessionID string) ([]schema.FeedbackData, error)

	// GetRecentScores returns up to limit score records created in the last
	// given number of days, newest first.
	GetRecentScores(ctx context.Context, days int, limit int) ([]schema.ScoreRecord, error)

	// GetSessionSummary returns the aggregate record for one session.
	GetSessionSummary(ctx context.Context, sessionID string) (*schema.SessionRecord, error)

	// GetTemplatePerformance returns per-template aggregates for templates used
	// in the last given number of days.
	GetTemplatePerformance(ctx context.Context, days int) ([]schema.TemplateRecord, error)

	// Cleanup deletes records older than the retention horizon.
	Cleanup(ctx context.Context, olderThan time.Duration) (schema.CleanupResult, error)

	// GetStatus returns status information about the record store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// HistoryStore tracks append-only version history for analytics. It is auxiliary
// observability state; losing it never affects persistence correctness.
// Implementations must be safe for concurrent use by batch workers.
type HistoryStore interface {
	// AppendSession records a versioned score under its session ID.
	AppendSession(entry schema.VersionEntry)

	// AppendTemplate records a versioned score under its template name.
	AppendTemplate(entry schema.VersionEntry)

	// SessionHistory returns the version entries for one session, oldest first.
	SessionHistory(sessionID string) []schema.VersionEntry

	// TemplateHistory returns the version entries for one template, oldest first.
	TemplateHistory(templateName string) []schema.VersionEntry

	// TemplateNames returns the names of all tracked templates.
	TemplateNames() []string
}

// NotifySink receives emitted score notifications. Delivery is best-effort,
// at-most-once: a sink failure is recorded but never fails the emit call.
type NotifySink interface {
	// Name identifies the sink in emission results and logs.
	Name() string

	// Enabled reports whether the sink should receive notifications.
	Enabled() bool

	// Notify delivers one notification payload. The context carries the
	// per-sink delivery timeout.
	Notify(ctx context.Context, n *schema.Notification) error
}

// StoreManager defines the interface for managing the record store lifecycle.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetRecordStore() RecordStore
	CloseAll()
}
