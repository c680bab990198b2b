package scorestore

import (
	"slices"
	"sync"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

// MemoryHistoryStore is an in-memory HistoryStore. Entries are kept in append
// order per key. It is safe for concurrent use by batch workers.
type MemoryHistoryStore struct {
	mu        sync.RWMutex
	sessions  map[string][]schema.VersionEntry
	templates map[string][]schema.VersionEntry
}

var _ contract.HistoryStore = &MemoryHistoryStore{} // Compile-time check

// NewMemoryHistoryStore creates an empty history store.
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{
		sessions:  make(map[string][]schema.VersionEntry),
		templates: make(map[string][]schema.VersionEntry),
	}
}

// AppendSession records a versioned score under its session ID.
func (s *MemoryHistoryStore) AppendSession(entry schema.VersionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[entry.SessionID] = append(s.sessions[entry.SessionID], entry)
}

// AppendTemplate records a versioned score under its template name.
func (s *MemoryHistoryStore) AppendTemplate(entry schema.VersionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[entry.TemplateName] = append(s.templates[entry.TemplateName], entry)
}

// SessionHistory returns the version entries for one session, oldest first.
func (s *MemoryHistoryStore) SessionHistory(sessionID string) []schema.VersionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sessions[sessionID])
}

// TemplateHistory returns the version entries for one template, oldest first.
func (s *MemoryHistoryStore) TemplateHistory(templateName string) []schema.VersionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.templates[templateName])
}

// TemplateNames returns the names of all tracked templates, sorted.
func (s *MemoryHistoryStore) TemplateNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
