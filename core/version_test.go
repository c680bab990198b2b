package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArnoldoM23/pess/schema"
)

// memHistory is a minimal in-memory history for versioner tests.
type memHistory struct {
	sessions  map[string][]schema.VersionEntry
	templates map[string][]schema.VersionEntry
}

func newMemHistory() *memHistory {
	return &memHistory{
		sessions:  make(map[string][]schema.VersionEntry),
		templates: make(map[string][]schema.VersionEntry),
	}
}

func (h *memHistory) AppendSession(entry schema.VersionEntry) {
	h.sessions[entry.SessionID] = append(h.sessions[entry.SessionID], entry)
}

func (h *memHistory) AppendTemplate(entry schema.VersionEntry) {
	h.templates[entry.TemplateName] = append(h.templates[entry.TemplateName], entry)
}

func (h *memHistory) SessionHistory(sessionID string) []schema.VersionEntry {
	return h.sessions[sessionID]
}

func (h *memHistory) TemplateHistory(templateName string) []schema.VersionEntry {
	return h.templates[templateName]
}

func (h *memHistory) TemplateNames() []string {
	names := make([]string, 0, len(h.templates))
	for name := range h.templates {
		names = append(names, name)
	}
	return names
}

func TestNewVersionerParsesVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
		wantErr bool
	}{
		{"v1.0.0", "v1.0.0", false},
		{"2.3.4", "v2.3.4", false},
		{" v1.2.3 ", "v1.2.3", false},
		{"v1.0", "", true},
		{"v1.0.0.0", "", true},
		{"va.b.c", "", true},
		{"v1.-1.0", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			v, err := NewVersioner(tt.version, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Version())
		})
	}
}

func TestVersionerIncrement(t *testing.T) {
	v, err := NewVersioner("v1.2.3", nil)
	require.NoError(t, err)

	got, err := v.Increment("patch")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.4", got)

	got, err = v.Increment("minor")
	require.NoError(t, err)
	assert.Equal(t, "v1.3.0", got)

	got, err = v.Increment("major")
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", got)

	_, err = v.Increment("mega")
	assert.Error(t, err)
	assert.Equal(t, "v2.0.0", v.Version())
}

func TestCorrelationHashDeterministic(t *testing.T) {
	a := CorrelationHash("v1.0.0", "feature_default", "1.2.0", schema.HashPrompt("x"))
	b := CorrelationHash("v1.0.0", "feature_default", "1.2.0", schema.HashPrompt("x"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)

	// Any component change yields a different hash.
	assert.NotEqual(t, a, CorrelationHash("v1.0.1", "feature_default", "1.2.0", schema.HashPrompt("x")))
	assert.NotEqual(t, a, CorrelationHash("v1.0.0", "bugfix_default", "1.2.0", schema.HashPrompt("x")))
	assert.NotEqual(t, a, CorrelationHash("v1.0.0", "feature_default", "1.2.1", schema.HashPrompt("x")))
	assert.NotEqual(t, a, CorrelationHash("v1.0.0", "feature_default", "1.2.0", schema.HashPrompt("y")))
}

func TestVersionScoreStampsAndRecords(t *testing.T) {
	history := newMemHistory()
	v, err := NewVersioner("v1.0.0", history)
	require.NoError(t, err)

	out := &schema.ScoringOutput{
		ScoringID: schema.NewScoringID(),
		SessionID: "sess-20260815-001",
		Timestamp: time.Now().UTC(),
		Metrics:   schema.ScoringMetrics{BaseScore: 100, FinalScore: 87.5},
		TemplateCorrelation: schema.TemplateCorrelation{
			TemplateName:    "feature_default",
			TemplateVersion: "1.2.0",
			PromptHash:      schema.HashPrompt("payload"),
			TaskType:        schema.FeatureTask,
		},
		PipelineStage: schema.EvaluateStage,
	}

	versioned := v.VersionScore(out)

	assert.Equal(t, schema.VersionStage, versioned.PipelineStage)
	assert.Equal(t, "v1.0.0", versioned.ScoreVersion)
	assert.Len(t, versioned.TemplateCorrelation.VersionHash, 16)

	// The original output is untouched.
	assert.Equal(t, schema.EvaluateStage, out.PipelineStage)
	assert.Empty(t, out.TemplateCorrelation.VersionHash)

	sessions := history.SessionHistory("sess-20260815-001")
	require.Len(t, sessions, 1)
	assert.Equal(t, 87.5, sessions[0].Score)
	assert.Equal(t, versioned.TemplateCorrelation.VersionHash, sessions[0].Hash)

	templates := history.TemplateHistory("feature_default")
	require.Len(t, templates, 1)
}

func TestVersionScoreSameCorrelationTwice(t *testing.T) {
	v, err := NewVersioner("v1.0.0", nil)
	require.NoError(t, err)

	out := &schema.ScoringOutput{
		ScoringID: schema.NewScoringID(),
		SessionID: "sess-20260815-001",
		TemplateCorrelation: schema.TemplateCorrelation{
			TemplateName:    "feature_default",
			TemplateVersion: "1.2.0",
			PromptHash:      schema.HashPrompt("payload"),
		},
	}

	first := v.VersionScore(out)
	second := v.VersionScore(out)
	assert.Equal(t, first.TemplateCorrelation.VersionHash, second.TemplateCorrelation.VersionHash)
}

func TestVersionBatchPreservesOrder(t *testing.T) {
	v, err := NewVersioner("v1.0.0", nil)
	require.NoError(t, err)

	outputs := []*schema.ScoringOutput{
		{ScoringID: "score_a", SessionID: "sess-a"},
		{ScoringID: "score_b", SessionID: "sess-b"},
	}

	versioned := v.VersionBatch(outputs)
	require.Len(t, versioned, 2)
	assert.Equal(t, "score_a", versioned[0].ScoringID)
	assert.Equal(t, "score_b", versioned[1].ScoringID)
	for _, out := range versioned {
		assert.Equal(t, "v1.0.0", out.ScoreVersion)
	}
}
