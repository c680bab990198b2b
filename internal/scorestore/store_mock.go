package scorestore

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRecordStore implements the StoreManager interface.
func (m *MockStoreManager) GetRecordStore() contract.RecordStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RecordStore)
	return store
}

// CloseAll implements the StoreManager interface.
func (m *MockStoreManager) CloseAll() {
	m.Called()
}

// MockRecordStore is a mock implementation of RecordStore for testing.
type MockRecordStore struct {
	mock.Mock
}

var _ contract.RecordStore = &MockRecordStore{} // Compile-time check

// SaveScore implements the RecordStore interface.
func (m *MockRecordStore) SaveScore(ctx context.Context, rec *schema.ScoreRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// SaveFeedback implements the RecordStore interface.
func (m *MockRecordStore) SaveFeedback(ctx context.Context, fb *schema.FeedbackData) error {
	args := m.Called(ctx, fb)
	return args.Error(0)
}

// GetFeedback implements the RecordStore interface.
func (m *MockRecordStore) GetFeedback(ctx context.Context, scoringID string) ([]schema.FeedbackData, error) {
	args := m.Called(ctx, scoringID)
	feedback, _ := args.Get(0).([]schema.FeedbackData)
	return feedback, args.Error(1)
}

// GetSessionFeedback implements the RecordStore interface.
func (m *MockRecordStore) GetSessionFeedback(ctx context.Context, sessionID string) ([]schema.FeedbackData, error) {
	args := m.Called(ctx, sessionID)
	feedback, _ := args.Get(0).([]schema.FeedbackData)
	return feedback, args.Error(1)
}

// GetRecentScores implements the RecordStore interface.
func (m *MockRecordStore) GetRecentScores(ctx context.Context, days int, limit int) ([]schema.ScoreRecord, error) {
	args := m.Called(ctx, days, limit)
	scores, _ := args.Get(0).([]schema.ScoreRecord)
	return scores, args.Error(1)
}

// GetSessionSummary implements the RecordStore interface.
func (m *MockRecordStore) GetSessionSummary(ctx context.Context, sessionID string) (*schema.SessionRecord, error) {
	args := m.Called(ctx, sessionID)
	rec, _ := args.Get(0).(*schema.SessionRecord)
	return rec, args.Error(1)
}

// GetTemplatePerformance implements the RecordStore interface.
func (m *MockRecordStore) GetTemplatePerformance(ctx context.Context, days int) ([]schema.TemplateRecord, error) {
	args := m.Called(ctx, days)
	records, _ := args.Get(0).([]schema.TemplateRecord)
	return records, args.Error(1)
}

// Cleanup implements the RecordStore interface.
func (m *MockRecordStore) Cleanup(ctx context.Context, olderThan time.Duration) (schema.CleanupResult, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(schema.CleanupResult), args.Error(1)
}

// GetStatus implements the RecordStore interface.
func (m *MockRecordStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the RecordStore interface.
func (m *MockRecordStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
