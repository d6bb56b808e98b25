package tracking

import (
	"fmt"
	"sort"
	"sync"
)

// Store persists buy-crypto orders per partner.
type Store interface {
	// Put inserts or replaces a record.
	Put(r *Record) error

	// Get returns the record for partner and id.
	Get(partner, id string) (*Record, error)

	// Update applies u to an existing record and returns the result.
	// A missing record yields ErrRecordNotFound and nothing is written.
	Update(partner, id string, u Update) (*Record, error)

	// Remove deletes a record. Removing a missing record is not an error.
	Remove(partner, id string) error

	// List returns the partner's records ordered by external id.
	List(partner string) ([]*Record, error)
}

// MemStore is an in-memory implementation of Store.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]map[string]*Record
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	records := make(map[string]map[string]*Record, len(Partners))
	for _, p := range Partners {
		records[p] = make(map[string]*Record)
	}
	return &MemStore{records: records}
}

// Put inserts or replaces a record.
func (s *MemStore) Put(r *Record) error {
	if err := validateRecord(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.Partner][r.ExternalID] = r.clone()
	return nil
}

// Get returns the record for partner and id.
func (s *MemStore) Get(partner, id string) (*Record, error) {
	if err := checkPartner(partner); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[partner][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, partner, id)
	}
	return r.clone(), nil
}

// Update applies u to an existing record.
func (s *MemStore) Update(partner, id string, u Update) (*Record, error) {
	if err := checkPartner(partner); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[partner][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, partner, id)
	}
	r.apply(u)
	return r.clone(), nil
}

// Remove deletes a record.
func (s *MemStore) Remove(partner, id string) error {
	if err := checkPartner(partner); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records[partner], id)
	return nil
}

// List returns the partner's records ordered by external id.
func (s *MemStore) List(partner string) ([]*Record, error) {
	if err := checkPartner(partner); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.records[partner]))
	for _, r := range s.records[partner] {
		out = append(out, r.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out, nil
}
