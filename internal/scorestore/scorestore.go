// Package scorestore persists scored sessions, aggregates, and feedback across
// SQLite, MySQL, and PostgreSQL backends.
package scorestore

import (
	"sync"

	"github.com/ArnoldoM23/pess/internal/contract"
)

// StoreManagerImpl manages the record store instance.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointer during initialization
	records      contract.RecordStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetRecordStore returns the record store, or nil when persistence is disabled.
func (mgr *StoreManagerImpl) GetRecordStore() contract.RecordStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.records
}

// CloseAll closes the managed store.
func (mgr *StoreManagerImpl) CloseAll() {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.records != nil {
		_ = mgr.records.Close()
	}
}
