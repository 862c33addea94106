package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// LearningStore is an in-memory store.LearningStore.
type LearningStore struct {
	db *MemoryDB
}

var _ store.LearningStore = (*LearningStore)(nil)

type verseKey struct {
	version uuid.UUID
	ref     string
}

func keyOf(st *domain.UserVerseStatus) verseKey {
	return verseKey{version: st.VersionID, ref: st.InternalReference}
}

// Create implements store.LearningStore. Cancelled statuses are replaced.
func (s *LearningStore) Create(_ context.Context, status *domain.UserVerseStatus) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, st := range s.db.statuses {
		if st.AccountID != status.AccountID || keyOf(st) != keyOf(status) || st.VerseSetID != status.VerseSetID {
			continue
		}
		if !st.Ignored {
			return false, nil
		}
		status.ID = id
		break
	}
	s.db.statuses[status.ID] = clone(status)
	return true, nil
}

// GetByID implements store.LearningStore.
func (s *LearningStore) GetByID(_ context.Context, id uuid.UUID) (*domain.UserVerseStatus, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	st, ok := s.db.statuses[id]
	if !ok {
		return nil, store.ErrStatusNotFound
	}
	return clone(st), nil
}

// ListMatching implements store.LearningStore.
func (s *LearningStore) ListMatching(_ context.Context, accountID, versionID uuid.UUID, internalRef string) ([]*domain.UserVerseStatus, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.UserVerseStatus
	for _, st := range s.db.statuses {
		if st.AccountID == accountID && st.VersionID == versionID && st.InternalReference == internalRef && !st.Ignored {
			out = append(out, clone(st))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Added.Before(out[j].Added) })
	return out, nil
}

// Update implements store.LearningStore.
func (s *LearningStore) Update(_ context.Context, status *domain.UserVerseStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.statuses[status.ID]; !ok {
		return store.ErrStatusNotFound
	}
	s.db.statuses[status.ID] = clone(status)
	return nil
}

// distinctVerses keeps the first status per verse after sorting by less.
func distinctVerses(statuses []*domain.UserVerseStatus, less func(a, b *domain.UserVerseStatus) bool) []*domain.UserVerseStatus {
	sort.Slice(statuses, func(i, j int) bool { return less(statuses[i], statuses[j]) })
	seen := make(map[verseKey]bool)
	var out []*domain.UserVerseStatus
	for _, st := range statuses {
		if seen[keyOf(st)] {
			continue
		}
		seen[keyOf(st)] = true
		out = append(out, st)
	}
	return out
}

// ReviewQueue implements store.LearningStore.
func (s *LearningStore) ReviewQueue(_ context.Context, accountID uuid.UUID, now time.Time, limit int) ([]*domain.UserVerseStatus, error) {
	s.db.mu.Lock()
	var due []*domain.UserVerseStatus
	for _, st := range s.db.statuses {
		if st.AccountID == accountID && st.IsDue(now) {
			due = append(due, clone(st))
		}
	}
	s.db.mu.Unlock()

	byDue := func(a, b *domain.UserVerseStatus) bool {
		if !a.NextTestDue.Time.Equal(b.NextTestDue.Time) {
			return a.NextTestDue.Time.Before(b.NextTestDue.Time)
		}
		return a.InternalReference < b.InternalReference
	}
	return paginate(distinctVerses(due, byDue), limit, 0), nil
}

// NewQueue implements store.LearningStore.
func (s *LearningStore) NewQueue(_ context.Context, accountID uuid.UUID, limit int) ([]*domain.UserVerseStatus, error) {
	s.db.mu.Lock()
	var fresh []*domain.UserVerseStatus
	for _, st := range s.db.statuses {
		if st.AccountID == accountID && !st.Ignored && st.MemoryStage < domain.MemoryStageTested {
			fresh = append(fresh, clone(st))
		}
	}
	s.db.mu.Unlock()

	bySet := func(a, b *domain.UserVerseStatus) bool {
		if a.VerseSetID.Valid != b.VerseSetID.Valid {
			return a.VerseSetID.Valid
		}
		if a.VerseSetID.UUID != b.VerseSetID.UUID {
			return a.VerseSetID.UUID.String() < b.VerseSetID.UUID.String()
		}
		if a.TextOrder != b.TextOrder {
			return a.TextOrder < b.TextOrder
		}
		return a.Added.Before(b.Added)
	}
	return paginate(distinctVerses(fresh, bySet), limit, 0), nil
}

// Progress implements store.LearningStore.
func (s *LearningStore) Progress(_ context.Context, accountID uuid.UUID, now time.Time, learntThreshold float64) (*domain.LearningProgress, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	started := make(map[verseKey]bool)
	tested := make(map[verseKey]bool)
	learnt := make(map[verseKey]bool)
	due := make(map[verseKey]bool)
	for _, st := range s.db.statuses {
		if st.AccountID != accountID || st.Ignored {
			continue
		}
		k := keyOf(st)
		started[k] = true
		if st.MemoryStage != domain.MemoryStageTested {
			continue
		}
		tested[k] = true
		if st.Strength >= learntThreshold {
			learnt[k] = true
		}
		if st.NextTestDue.Valid && !st.NextTestDue.Time.After(now) {
			due[k] = true
		}
	}
	return &domain.LearningProgress{
		Started: len(started),
		Tested:  len(tested),
		Learnt:  len(learnt),
		Due:     len(due),
	}, nil
}

// RecordTest implements store.LearningStore.
func (s *LearningStore) RecordTest(_ context.Context, record *domain.TestRecord) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.tests = append(s.db.tests, clone(record))
	return nil
}

// ConsecutivePerfectTests implements store.LearningStore.
func (s *LearningStore) ConsecutivePerfectTests(_ context.Context, accountID uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var lastMiss time.Time
	for _, t := range s.db.tests {
		if t.AccountID == accountID && t.Accuracy < 1 && t.Created.After(lastMiss) {
			lastMiss = t.Created
		}
	}
	n := 0
	for _, t := range s.db.tests {
		if t.AccountID == accountID && t.Accuracy >= 1 && t.Created.After(lastMiss) {
			n++
		}
	}
	return n, nil
}

// DistinctTestHours implements store.LearningStore.
func (s *LearningStore) DistinctTestHours(_ context.Context, accountID uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	hours := make(map[int]bool)
	for _, t := range s.db.tests {
		if t.AccountID == accountID {
			hours[t.Created.UTC().Hour()] = true
		}
	}
	return len(hours), nil
}

// DistinctTestDays implements store.LearningStore.
func (s *LearningStore) DistinctTestDays(_ context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	days := make(map[string]bool)
	for _, t := range s.db.tests {
		if t.AccountID == accountID && !t.Created.Before(since) {
			days[t.Created.UTC().Format(time.DateOnly)] = true
		}
	}
	return len(days), nil
}
