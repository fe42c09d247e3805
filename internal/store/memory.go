package store

import (
	"errors"
	"sync"
	"time"

	"github.com/Harini-2202-S/building-weather/internal/geo"
	"github.com/Harini-2202-S/building-weather/internal/weather"
)

// ErrNotFound is returned when no record is cached for a coordinate.
var ErrNotFound = errors.New("no weather record for coordinate")

// recordHistory holds a time-ordered list of records for one coordinate.
type recordHistory struct {
	records []weather.Record
}

// MemoryStore is a concurrency-safe in-memory cache of weather records keyed
// by exact coordinate. Each coordinate keeps a bounded history so recent
// observations can be queried as a range.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*recordHistory

	maxHistory int           // max records per coordinate, <= 0 means unlimited
	maxAge     time.Duration // max record age, 0 means unlimited
}

// NewMemoryStore creates a MemoryStore with the given retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*recordHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveRecord appends a record for the coordinate and enforces retention.
// A history is never emptied: the newest record survives the age cutoff so
// Latest keeps answering for a coordinate that was seen at least once.
func (s *MemoryStore) SaveRecord(coord geo.Coordinate, rec weather.Record) {
	key := coord.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &recordHistory{}
		s.data[key] = history
	}

	history.records = append(history.records, rec)

	if s.maxHistory > 0 && len(history.records) > s.maxHistory {
		over := len(history.records) - s.maxHistory
		history.records = history.records[over:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.records); i++ {
			if !history.records[i].ObservedAt.Before(cutoff) {
				break
			}
		}
		if i == len(history.records) {
			i = len(history.records) - 1
		}
		if i > 0 {
			history.records = history.records[i:]
		}
	}
}

// Latest returns the most recent record for the coordinate.
func (s *MemoryStore) Latest(coord geo.Coordinate) (weather.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[coord.Key()]
	if !ok || len(history.records) == 0 {
		return weather.Record{}, ErrNotFound
	}
	return history.records[len(history.records)-1], nil
}

// Range returns all records for the coordinate observed between from and to,
// inclusive.
func (s *MemoryStore) Range(coord geo.Coordinate, from, to time.Time) ([]weather.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[coord.Key()]
	if !ok || len(history.records) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Record
	for _, rec := range history.records {
		if !rec.ObservedAt.Before(from) && !rec.ObservedAt.After(to) {
			result = append(result, rec)
		}
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
