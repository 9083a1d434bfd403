package merchant

import (
	"context"
	"time"
)

// Source is the authoritative backing store for merchant records. PgSource
// (the Postgres merchants table) satisfies this in production; tests use an
// in-memory map.
type Source interface {
	GetByKey(ctx context.Context, merchantKey string) (Merchant, bool, error)
	Touch(ctx context.Context, merchantKey string) error
}

// MemorySource is a Source backed by a plain map, used by tests and local
// development seeding.
type MemorySource struct {
	merchants map[string]Merchant
}

func NewMemorySource(seed ...Merchant) *MemorySource {
	m := &MemorySource{merchants: make(map[string]Merchant, len(seed))}
	for _, merch := range seed {
		m.merchants[merch.MerchantKey] = merch
	}
	return m
}

func (s *MemorySource) GetByKey(_ context.Context, merchantKey string) (Merchant, bool, error) {
	m, ok := s.merchants[merchantKey]
	return m, ok, nil
}

func (s *MemorySource) Touch(_ context.Context, merchantKey string) error {
	if m, ok := s.merchants[merchantKey]; ok {
		m.LastSeen = time.Now()
		s.merchants[merchantKey] = m
	}
	return nil
}
