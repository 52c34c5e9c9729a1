// Package notify builds notification records and delivers them best-effort
// across independent channels (email, spreadsheet append, chat message).
package notify

import (
	"sync"
	"time"

	"github.com/hyperjump/keiyaku/internal/models"
)

// storeCapacity bounds the in-memory notification log.
const storeCapacity = 100

// Store is a bounded, process-wide log of notification records, newest first.
// It is shared mutable state accessed by every request handler; all mutation
// goes through its mutex. Contents are lost on restart.
type Store struct {
	mu      sync.Mutex
	records []*models.NotificationRecord
	lastTS  time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Insert assigns the record a timestamp, prepends it, and evicts the oldest
// entry beyond capacity. Timestamps are RFC3339Nano UTC and strictly
// increasing: an insert in the same nanosecond is bumped forward so that
// dismissal by timestamp stays unambiguous.
func (s *Store) Insert(rec *models.NotificationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := time.Now().UTC()
	if !ts.After(s.lastTS) {
		ts = s.lastTS.Add(time.Nanosecond)
	}
	s.lastTS = ts
	rec.Timestamp = ts.Format(time.RFC3339Nano)

	s.records = append([]*models.NotificationRecord{rec}, s.records...)
	if len(s.records) > storeCapacity {
		s.records = s.records[:storeCapacity]
	}
}

// List returns up to limit records, newest first. Records are copied so
// callers never observe concurrent flag updates mid-read.
func (s *Store) List(limit int) []*models.NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]*models.NotificationRecord, 0, limit)
	for _, rec := range s.records[:limit] {
		c := *rec
		out = append(out, &c)
	}
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Update applies fn to the record with the given timestamp under the store
// lock. Returns false when no record matches (e.g. already evicted).
func (s *Store) Update(timestamp string, fn func(*models.NotificationRecord)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.Timestamp == timestamp {
			fn(rec)
			return true
		}
	}
	return false
}

// latest returns a copy of the stored record with the given timestamp, or
// fallback when the record has already been evicted.
func (s *Store) latest(timestamp string, fallback *models.NotificationRecord) *models.NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.Timestamp == timestamp {
			c := *rec
			return &c
		}
	}
	return fallback
}

// Dismiss removes at most one record whose timestamp matches exactly and
// whose recipient equals requester, or where requester holds administrative
// privilege. Dismissing a non-existent timestamp is not an error; it reports
// removed=false.
func (s *Store) Dismiss(timestamp, requester string, requesterIsAdmin bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.records {
		if rec.Timestamp != timestamp {
			continue
		}
		if rec.Recipient == requester || requesterIsAdmin {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true
		}
		return false
	}
	return false
}
