package catalog

import (
	"sync"

	"audiobook-storefront/models"
)

// Snapshot holds the last successfully loaded full catalog. Machines of independent
// page loads share one Snapshot for the stale-catalog and local-search fallbacks.
type Snapshot struct {
	mu    sync.RWMutex
	items []models.CatalogItem
}

// NewSnapshot creates an empty Snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Items returns the stored catalog, or nil when none was loaded yet
func (s *Snapshot) Items() []models.CatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// Store replaces the stored catalog
func (s *Snapshot) Store(items []models.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

// Item looks up id in the stored catalog
func (s *Snapshot) Item(id int) (models.CatalogItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.CatalogItem{}, false
}
