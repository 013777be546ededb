package caching

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"traders/internal/models"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryDraftStore is an in-process DraftStore. Drafts are stored encoded so
// callers never share mutable state with the store.
type MemoryDraftStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryDraftStore) Get(_ context.Context, sessionID string) (*models.DraftOrder, error) {
	s.mu.Lock()
	entry, ok := s.entries[draftKey(sessionID)]
	if ok && !entry.expiresAt.After(s.now()) {
		delete(s.entries, draftKey(sessionID))
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	var draft models.DraftOrder
	if err := json.Unmarshal(entry.data, &draft); err != nil {
		return nil, err
	}
	if draft.Lines == nil {
		draft.Lines = []models.DraftLine{}
	}
	return &draft, nil
}

func (s *MemoryDraftStore) Set(_ context.Context, sessionID string, draft *models.DraftOrder) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[draftKey(sessionID)] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryDraftStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, draftKey(sessionID))
	return nil
}

// Sweep drops every draft that expired at or before now and returns how many
// were removed.
func (s *MemoryDraftStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if !entry.expiresAt.After(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored drafts, expired or not
func (s *MemoryDraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
