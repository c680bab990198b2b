package scorestore

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ArnoldoM23/pess/schema"
)

func TestMemoryHistoryStore_AppendAndRead(t *testing.T) {
	store := NewMemoryHistoryStore()

	first := schema.VersionEntry{
		SessionID:    "sess-1",
		TemplateName: "feature_default",
		Version:      "1.2.0",
		Hash:         "a1b2c3d4e5f60718",
		Score:        82,
		Timestamp:    time.Now(),
	}
	second := first
	second.Version = "1.2.1"
	second.Score = 91

	store.AppendSession(first)
	store.AppendSession(second)
	store.AppendTemplate(first)

	sessions := store.SessionHistory("sess-1")
	assert.Len(t, sessions, 2)
	assert.Equal(t, "1.2.0", sessions[0].Version)
	assert.Equal(t, "1.2.1", sessions[1].Version)

	assert.Len(t, store.TemplateHistory("feature_default"), 1)
	assert.Empty(t, store.SessionHistory("sess-unknown"))
	assert.Empty(t, store.TemplateHistory("unknown_template"))
}

func TestMemoryHistoryStore_TemplateNamesSorted(t *testing.T) {
	store := NewMemoryHistoryStore()
	for _, name := range []string{"refactor_v2", "bugfix_default", "feature_default"} {
		store.AppendTemplate(schema.VersionEntry{TemplateName: name})
	}

	assert.Equal(t, []string{"bugfix_default", "feature_default", "refactor_v2"}, store.TemplateNames())
}

func TestMemoryHistoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryHistoryStore()
	store.AppendSession(schema.VersionEntry{SessionID: "sess-1", Version: "1.0.0"})

	history := store.SessionHistory("sess-1")
	history[0].Version = "corrupted"

	assert.Equal(t, "1.0.0", store.SessionHistory("sess-1")[0].Version)
}

func TestMemoryHistoryStore_ConcurrentAppends(t *testing.T) {
	store := NewMemoryHistoryStore()

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			store.AppendSession(schema.VersionEntry{SessionID: "sess-1"})
			store.AppendTemplate(schema.VersionEntry{TemplateName: "feature_default"})
		})
	}
	wg.Wait()

	assert.Len(t, store.SessionHistory("sess-1"), 20)
	assert.Len(t, store.TemplateHistory("feature_default"), 20)
}
