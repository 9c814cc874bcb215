package usage

import (
	"context"
	"sort"
	"sync"
)

type recordKey struct {
	userID string
	day    string
}

// implements Store in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[recordKey]*UsageRecord
}

// creates a new in-memory usage store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[recordKey]*UsageRecord)}
}

func (s *MemoryStore) Initialize(_ context.Context) error {
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, userID, day string, cost float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{userID, day}

	r, ok := s.records[key]
	if !ok {
		r = &UsageRecord{UserID: userID, Day: day}
		s.records[key] = r
	}

	r.Count++
	r.Cost += cost

	return nil
}

func (s *MemoryStore) Count(_ context.Context, userID, day string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.records[recordKey{userID, day}]; ok {
		return r.Count, nil
	}

	return 0, nil
}

func (s *MemoryStore) TotalCost(_ context.Context, day string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for key, r := range s.records {
		if key.day == day {
			total += r.Cost
		}
	}

	return total, nil
}

func (s *MemoryStore) History(_ context.Context, userID, since string) ([]UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []UsageRecord
	for key, r := range s.records {
		if key.userID == userID && key.day >= since {
			records = append(records, *r)
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Day < records[j].Day })

	return records, nil
}

// seeds a record directly, used to set up aggregate scenarios
func (s *MemoryStore) Put(record UsageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := record
	s.records[recordKey{record.UserID, record.Day}] = &copied
}
