package store

import (
	"context"
	"sync"

	"tracker/internal/tracker/models"
)

// InMemoryStore keeps stored identities in a map. Safe for concurrent use.
type InMemoryStore struct {
	mu     sync.RWMutex
	stored models.IdentitySet
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{stored: models.NewIdentitySet()}
}

func (s *InMemoryStore) Existing(_ context.Context, kind models.RecordKind, uids []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []string
	for _, uid := range uids {
		if s.stored.Contains(models.Identity{Kind: kind, UID: uid}) {
			found = append(found, uid)
		}
	}
	return found, nil
}

func (s *InMemoryStore) MarkStored(_ context.Context, kind models.RecordKind, uids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, uid := range uids {
		s.stored.Add(models.Identity{Kind: kind, UID: uid})
	}
	return nil
}

// Clear removes every stored identity.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = models.NewIdentitySet()
}
