package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/lahray/ticket-payments/internal/model"
)

// MemoryStore is an in-process PaymentStore used by tests and local
// development (STORE_DRIVER=memory).  It honors the same contract as the
// remote backends: opaque IDs assigned on create, reference uniqueness,
// newest-first listing.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	records []model.PaymentRecord
	byRef   map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byRef: make(map[string]struct{})}
}

func (s *MemoryStore) Create(ctx context.Context, rec *model.PaymentRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byRef[rec.TransactionRef]; exists {
		return "", ErrDuplicateRef
	}
	s.nextID++
	rec.ID = strconv.FormatInt(s.nextID, 10)
	rec.CreatedAt = time.Now().UTC()
	s.byRef[rec.TransactionRef] = struct{}{}
	// Prepend so the slice stays newest-first without a sort on read.
	s.records = append([]model.PaymentRecord{*rec}, s.records...)
	return rec.ID, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]model.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PaymentRecord, len(s.records))
	copy(out, s.records)
	for i := range out {
		out[i].Status = model.NormalizeStatus(string(out[i].Status))
		if out[i].Name == "" {
			out[i].Name = model.PlaceholderName
		}
	}
	return out, nil
}
