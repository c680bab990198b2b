package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArnoldoM23/pess/schema"
)

func sampleNotification() *schema.Notification {
	return &schema.Notification{
		SessionID:  "sess-20260815-001",
		ScoringID:  "score_01JABCDEF",
		FinalScore: 82.5,
		DimensionalScores: schema.DimensionalScores{
			Clarity:  0.9,
			Coverage: 0.8,
		},
		TemplateInfo: schema.TemplateCorrelation{
			TemplateName:    "feature_default",
			TemplateVersion: "1.2.0",
			TaskType:        schema.FeatureTask,
		},
		Alerts:    []string{"HIGH: Multiple retries detected - template may need revision"},
		Timestamp: time.Now().UTC(),
	}
}

func TestWebhookSinkDeliversPayload(t *testing.T) {
	var received schema.Notification
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	s := NewWebhookSink(server.URL)
	require.True(t, s.Enabled())
	assert.Equal(t, "webhook", s.Name())

	err := s.Notify(context.Background(), sampleNotification())
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "sess-20260815-001", received.SessionID)
	assert.InDelta(t, 82.5, received.FinalScore, 1e-9)
	assert.Equal(t, "feature_default", received.TemplateInfo.TemplateName)
	assert.Len(t, received.Alerts, 1)
}

func TestWebhookSinkServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewWebhookSink(server.URL).Notify(context.Background(), sampleNotification())
	assert.ErrorContains(t, err, "http 502")
}

func TestWebhookSinkUnreachable(t *testing.T) {
	// Closed server to force a connection error
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	err := NewWebhookSink(server.URL).Notify(context.Background(), sampleNotification())
	assert.ErrorContains(t, err, "webhook delivery failed")
}

func TestWebhookSinkHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewWebhookSink(server.URL).Notify(ctx, sampleNotification())
	assert.Error(t, err)
}

func TestWebhookSinkDisabledWhenNoURL(t *testing.T) {
	assert.False(t, NewWebhookSink("").Enabled())
}

func TestLogSinkWritesSummary(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSinkTo(&buf, true)
	require.True(t, s.Enabled())
	assert.Equal(t, "log", s.Name())

	require.NoError(t, s.Notify(context.Background(), sampleNotification()))

	out := buf.String()
	assert.Contains(t, out, "session=sess-20260815-001")
	assert.Contains(t, out, "score=82.5")
	assert.Contains(t, out, "Excellent")
	assert.Contains(t, out, "alerts=1")
}

func TestLogSinkDisabled(t *testing.T) {
	assert.False(t, NewLogSink(false).Enabled())
}
