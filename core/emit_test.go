package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

// mockStore implements contract.RecordStore with an injectable save failure
// and canned per-session feedback.
type mockStore struct {
	saved       []*schema.ScoreRecord
	failFor     map[string]error                 // keyed by session ID
	feedbackFor map[string][]schema.FeedbackData // keyed by session ID
}

func newMockStore() *mockStore {
	return &mockStore{
		failFor:     make(map[string]error),
		feedbackFor: make(map[string][]schema.FeedbackData),
	}
}

func (s *mockStore) SaveScore(_ context.Context, rec *schema.ScoreRecord) error {
	if err, ok := s.failFor[rec.SessionID]; ok {
		return err
	}
	s.saved = append(s.saved, rec)
	return nil
}

func (s *mockStore) SaveFeedback(context.Context, *schema.FeedbackData) error { return nil }

func (s *mockStore) GetFeedback(context.Context, string) ([]schema.FeedbackData, error) {
	return nil, nil
}

func (s *mockStore) GetSessionFeedback(_ context.Context, sessionID string) ([]schema.FeedbackData, error) {
	return s.feedbackFor[sessionID], nil
}

func (s *mockStore) GetRecentScores(context.Context, int, int) ([]schema.ScoreRecord, error) {
	return nil, nil
}

func (s *mockStore) GetSessionSummary(context.Context, string) (*schema.SessionRecord, error) {
	return nil, nil
}

func (s *mockStore) GetTemplatePerformance(context.Context, int) ([]schema.TemplateRecord, error) {
	return nil, nil
}

func (s *mockStore) Cleanup(context.Context, time.Duration) (schema.CleanupResult, error) {
	return schema.CleanupResult{}, nil
}

func (s *mockStore) GetStatus(context.Context) (schema.StoreStatus, error) {
	return schema.StoreStatus{}, nil
}

func (s *mockStore) Close() error { return nil }

// mockSink implements contract.NotifySink with an injectable failure.
type mockSink struct {
	name     string
	enabled  bool
	err      error
	received []*schema.Notification
}

func (m *mockSink) Name() string  { return m.name }
func (m *mockSink) Enabled() bool { return m.enabled }

func (m *mockSink) Notify(_ context.Context, n *schema.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.received = append(m.received, n)
	return nil
}

func scoredOutput(sessionID string) *schema.ScoringOutput {
	return &schema.ScoringOutput{
		ScoringID: schema.NewScoringID(),
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Metrics:   schema.ScoringMetrics{BaseScore: 100, FinalScore: 82.0},
		TemplateCorrelation: schema.TemplateCorrelation{
			TemplateName:    "feature_default",
			TemplateVersion: "1.2.0",
			PromptHash:      schema.HashPrompt(sessionID),
			TaskType:        schema.FeatureTask,
		},
		PipelineStage: schema.VersionStage,
		ScoreVersion:  "v1.0.0",
	}
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := newMockStore()
	sink := &mockSink{name: "log", enabled: true}
	e := NewEmitter(store, []contract.NotifySink{sink}, time.Second, time.Second)

	out := scoredOutput("sess-20260815-001")
	result := e.Emit(context.Background(), out, goodInput())

	assert.True(t, result.Persisted)
	assert.Empty(t, result.Errors)
	require.Len(t, store.saved, 1)
	assert.Equal(t, out.ScoringID, store.saved[0].ScoringID)
	assert.Equal(t, schema.EmitStage, out.PipelineStage)

	require.Len(t, result.Notifications, 1)
	assert.True(t, result.Notifications[0].Success)
	require.Len(t, sink.received, 1)
	assert.Equal(t, 82.0, sink.received[0].FinalScore)
}

func TestEmitWithoutStore(t *testing.T) {
	e := NewEmitter(nil, nil, time.Second, time.Second)

	result := e.Emit(context.Background(), scoredOutput("sess-20260815-001"), nil)

	assert.False(t, result.Persisted)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Notifications)
}

func TestEmitPersistenceFailureStillNotifies(t *testing.T) {
	store := newMockStore()
	store.failFor["sess-20260815-001"] = errors.New("disk full")
	sink := &mockSink{name: "webhook", enabled: true}
	e := NewEmitter(store, []contract.NotifySink{sink}, time.Second, time.Second)

	result := e.Emit(context.Background(), scoredOutput("sess-20260815-001"), nil)

	assert.False(t, result.Persisted)
	require.Len(t, result.Errors, 1)
	var perr *PersistenceError
	assert.ErrorAs(t, result.Errors[0], &perr)

	// Notification still goes out even when persistence failed.
	require.Len(t, result.Notifications, 1)
	assert.True(t, result.Notifications[0].Success)
}

// hangingStore blocks SaveScore until the caller's context expires.
type hangingStore struct {
	mockStore
}

func (s *hangingStore) SaveScore(ctx context.Context, _ *schema.ScoreRecord) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestEmitPersistTimeoutSurfacesError(t *testing.T) {
	sink := &mockSink{name: "log", enabled: true}
	e := NewEmitter(&hangingStore{}, []contract.NotifySink{sink}, time.Second, 10*time.Millisecond)

	start := time.Now()
	result := e.Emit(context.Background(), scoredOutput("sess-20260815-001"), nil)

	assert.Less(t, time.Since(start), time.Second, "a hung store must not block the stage")
	assert.False(t, result.Persisted)
	require.Len(t, result.Errors, 1)
	var perr *PersistenceError
	assert.ErrorAs(t, result.Errors[0], &perr)
	assert.ErrorIs(t, perr.Err, context.DeadlineExceeded)

	// Notification still goes out after the timed-out write.
	require.Len(t, result.Notifications, 1)
	assert.True(t, result.Notifications[0].Success)
}

func TestEmitSinkFailureIsNonFatal(t *testing.T) {
	store := newMockStore()
	failing := &mockSink{name: "webhook", enabled: true, err: errors.New("http 502")}
	working := &mockSink{name: "log", enabled: true}
	e := NewEmitter(store, []contract.NotifySink{failing, working}, time.Second, time.Second)

	result := e.Emit(context.Background(), scoredOutput("sess-20260815-001"), nil)

	assert.True(t, result.Persisted)
	require.Len(t, result.Notifications, 2)

	assert.Equal(t, "webhook", result.Notifications[0].Sink)
	assert.False(t, result.Notifications[0].Success)
	assert.Contains(t, result.Notifications[0].Error, "http 502")

	assert.Equal(t, "log", result.Notifications[1].Sink)
	assert.True(t, result.Notifications[1].Success)
}

func TestEmitSkipsDisabledSinks(t *testing.T) {
	disabled := &mockSink{name: "webhook", enabled: false}
	e := NewEmitter(nil, []contract.NotifySink{disabled}, time.Second, time.Second)

	result := e.Emit(context.Background(), scoredOutput("sess-20260815-001"), nil)

	assert.Empty(t, result.Notifications)
	assert.Empty(t, disabled.received)
}

func TestEmitBatchIsolatesFailures(t *testing.T) {
	store := newMockStore()
	store.failFor["sess-3"] = errors.New("constraint violation")
	sink := &mockSink{name: "log", enabled: true}
	e := NewEmitter(store, []contract.NotifySink{sink}, time.Second, time.Second)

	outputs := make([]*schema.ScoringOutput, 5)
	inputs := make([]*schema.ScoringInput, 5)
	for i := range outputs {
		sessionID := "sess-" + string(rune('1'+i))
		outputs[i] = scoredOutput(sessionID)
		in := goodInput()
		in.SessionID = sessionID
		inputs[i] = in
	}

	results := e.EmitBatch(context.Background(), outputs, inputs)
	require.Len(t, results, 5)

	persisted := 0
	for i, r := range results {
		assert.Equal(t, outputs[i].SessionID, r.SessionID)
		if r.Persisted {
			persisted++
		}
		// Every record is notified regardless of persistence outcome.
		require.Len(t, r.Notifications, 1)
		assert.True(t, r.Notifications[0].Success)
	}
	assert.Equal(t, 4, persisted)
	assert.False(t, results[2].Persisted)
	assert.Len(t, store.saved, 4)
}

func TestBuildScoreRecordFlattens(t *testing.T) {
	out := scoredOutput("sess-20260815-001")
	out.TemplateCorrelation.VersionHash = "abcdef0123456789"
	out.ConfidenceScore = 0.92
	out.DataQuality = 0.95

	in := goodInput()
	in.RetryCount = 2
	in.EditSimilarity = 0.8

	rec := BuildScoreRecord(out, in)

	assert.Equal(t, out.ScoringID, rec.ScoringID)
	assert.Equal(t, "sess-20260815-001", rec.SessionID)
	assert.Equal(t, "CART-123", rec.TicketID)
	assert.Equal(t, "feature_default", rec.TemplateName)
	assert.Equal(t, "abcdef0123456789", rec.VersionHash)
	assert.Equal(t, 82.0, rec.FinalScore)
	assert.Equal(t, 2, rec.RetryCount)
	assert.InDelta(t, 0.8, rec.EditSimilarity, 0.001)
	assert.Equal(t, in.FilesReferenced, rec.FilesReferenced)
}

func TestBuildScoreRecordNilInput(t *testing.T) {
	rec := BuildScoreRecord(scoredOutput("sess-20260815-001"), nil)
	assert.Empty(t, rec.TicketID)
	assert.Zero(t, rec.RetryCount)
}
