package ledger

import (
	"context"
	"sort"
	"sync"

	"relaygate/internal/relay/models"
	id "relaygate/pkg/domain"
	"relaygate/pkg/platform/sentinel"
)

// InMemory keeps failure records in process.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.MessageID]models.FailureRecord
}

// NewInMemory constructs an empty in-memory failure ledger.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.MessageID]models.FailureRecord)}
}

func (s *InMemory) Record(_ context.Context, rec models.FailureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.MessageID] = rec
	return nil
}

func (s *InMemory) Find(_ context.Context, messageID id.MessageID) (models.FailureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[messageID]; ok {
		return rec, nil
	}
	return models.FailureRecord{}, sentinel.ErrNotFound
}

func (s *InMemory) Delete(_ context.Context, messageID id.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, messageID)
	return nil
}

func (s *InMemory) List(_ context.Context) ([]models.FailureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.FailureRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FailedAt.Before(out[j].FailedAt) })
	return out, nil
}
