package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// ScoreStore is an in-memory store.ScoreStore.
type ScoreStore struct {
	db *MemoryDB
}

var _ store.ScoreStore = (*ScoreStore)(nil)

// AddLog implements store.ScoreStore.
func (s *ScoreStore) AddLog(_ context.Context, log *domain.ScoreLog) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.scoreLogs = append(s.db.scoreLogs, clone(log))
	return nil
}

// Leaderboard implements store.ScoreStore.
func (s *ScoreStore) Leaderboard(_ context.Context, q store.LeaderboardQuery) ([]*domain.LeaderboardEntry, error) {
	var filter map[uuid.UUID]bool
	if q.AccountIDs != nil {
		filter = make(map[uuid.UUID]bool, len(q.AccountIDs))
		for _, id := range q.AccountIDs {
			filter[id] = true
		}
	}

	s.db.mu.Lock()
	points := make(map[uuid.UUID]int)
	if q.Since.IsZero() {
		for _, a := range s.db.accounts {
			points[a.ID] = a.TotalScore
		}
	} else {
		for _, l := range s.db.scoreLogs {
			if !l.Created.Before(q.Since) {
				points[l.AccountID] += l.Points
			}
		}
	}
	var entries []*domain.LeaderboardEntry
	for id, p := range points {
		a, ok := s.db.accounts[id]
		if !ok || !a.IsActive || a.IsHellbanned || p <= 0 || (filter != nil && !filter[id]) {
			continue
		}
		entries = append(entries, &domain.LeaderboardEntry{AccountID: id, Username: a.Username, Points: p})
	}
	s.db.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Username < entries[j].Username
	})
	limit := q.Limit
	if limit <= 0 {
		limit = 30
	}
	entries = paginate(entries, limit, q.Offset)
	for i, e := range entries {
		e.Rank = q.Offset + i + 1
	}
	return entries, nil
}

// AwardStore is an in-memory store.AwardStore.
type AwardStore struct {
	db *MemoryDB
}

var _ store.AwardStore = (*AwardStore)(nil)

// Create implements store.AwardStore.
func (s *AwardStore) Create(_ context.Context, award *domain.Award) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, a := range s.db.awards {
		if a.AccountID == award.AccountID && a.Type == award.Type && a.Level == award.Level {
			return false, nil
		}
	}
	s.db.awards = append(s.db.awards, clone(award))
	return true, nil
}

// ListByAccount implements store.AwardStore.
func (s *AwardStore) ListByAccount(_ context.Context, accountID uuid.UUID) ([]*domain.Award, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Award
	for _, a := range s.db.awards {
		if a.AccountID == accountID {
			out = append(out, clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Level < out[j].Level
	})
	return out, nil
}

// EventStore is an in-memory store.EventStore.
type EventStore struct {
	db *MemoryDB
}

var _ store.EventStore = (*EventStore)(nil)

// Create implements store.EventStore.
func (s *EventStore) Create(_ context.Context, event *domain.Event) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.events = append(s.db.events, clone(event))
	return nil
}

func (s *EventStore) withActor(e *domain.Event) *domain.Event {
	out := clone(e)
	if a, ok := s.db.accounts[e.AccountID]; ok {
		out.AccountUsername = a.Username
		out.AccountHellbanned = a.IsHellbanned
	}
	return out
}

// GetByID implements store.EventStore.
func (s *EventStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, e := range s.db.events {
		if e.ID == id {
			return s.withActor(e), nil
		}
	}
	return nil, store.ErrEventNotFound
}

func newestFirst(evts []*domain.Event) {
	sort.SliceStable(evts, func(i, j int) bool { return evts[i].Created.After(evts[j].Created) })
}

// ListSince implements store.EventStore.
func (s *EventStore) ListSince(_ context.Context, since time.Time, limit int) ([]*domain.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Event
	for _, e := range s.db.events {
		if e.Created.After(since) {
			out = append(out, s.withActor(e))
		}
	}
	newestFirst(out)
	return paginate(out, limit, 0), nil
}

// ListByAccount implements store.EventStore.
func (s *EventStore) ListByAccount(_ context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Event
	for _, e := range s.db.events {
		if e.AccountID == accountID {
			out = append(out, s.withActor(e))
		}
	}
	newestFirst(out)
	return paginate(out, limit, offset), nil
}

// CommentStore is an in-memory store.CommentStore.
type CommentStore struct {
	db *MemoryDB
}

var _ store.CommentStore = (*CommentStore)(nil)

// Create implements store.CommentStore.
func (s *CommentStore) Create(_ context.Context, comment *domain.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.comments[comment.ID] = clone(comment)
	return nil
}

func (s *CommentStore) withAuthor(c *domain.Comment) *domain.Comment {
	out := clone(c)
	if a, ok := s.db.accounts[c.AuthorID]; ok {
		out.AuthorUsername = a.Username
		out.AuthorHellbanned = a.IsHellbanned
	}
	return out
}

// GetByID implements store.CommentStore.
func (s *CommentStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return nil, store.ErrCommentNotFound
	}
	return s.withAuthor(c), nil
}

func (s *CommentStore) list(match func(c *domain.Comment) bool) []*domain.Comment {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Comment
	for _, c := range s.db.comments {
		if match(c) {
			out = append(out, s.withAuthor(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// ListForEvent implements store.CommentStore.
func (s *CommentStore) ListForEvent(_ context.Context, eventID uuid.UUID) ([]*domain.Comment, error) {
	return s.list(func(c *domain.Comment) bool { return c.EventID.Valid && c.EventID.UUID == eventID }), nil
}

// ListForGroup implements store.CommentStore.
func (s *CommentStore) ListForGroup(_ context.Context, groupID uuid.UUID) ([]*domain.Comment, error) {
	return s.list(func(c *domain.Comment) bool { return c.GroupID.Valid && c.GroupID.UUID == groupID }), nil
}

// SetHidden implements store.CommentStore.
func (s *CommentStore) SetHidden(_ context.Context, id uuid.UUID, hidden bool) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return store.ErrCommentNotFound
	}
	c.Hidden = hidden
	return nil
}
