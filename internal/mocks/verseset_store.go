package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// VerseSetStore is an in-memory store.VerseSetStore.
type VerseSetStore struct {
	db *MemoryDB
}

var _ store.VerseSetStore = (*VerseSetStore)(nil)

// Create implements store.VerseSetStore.
func (s *VerseSetStore) Create(_ context.Context, set *domain.VerseSet, choices []*domain.VerseChoice) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, vs := range s.db.sets {
		if vs.Slug == set.Slug {
			return store.ErrSlugExists
		}
	}
	s.db.sets[set.ID] = clone(set)
	s.db.choices[set.ID] = cloneAll(choices)
	return nil
}

// GetByID implements store.VerseSetStore.
func (s *VerseSetStore) GetByID(_ context.Context, id uuid.UUID) (*domain.VerseSet, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	vs, ok := s.db.sets[id]
	if !ok {
		return nil, store.ErrVerseSetNotFound
	}
	return clone(vs), nil
}

// GetBySlug implements store.VerseSetStore.
func (s *VerseSetStore) GetBySlug(_ context.Context, slug string) (*domain.VerseSet, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, vs := range s.db.sets {
		if vs.Slug == slug {
			return clone(vs), nil
		}
	}
	return nil, store.ErrVerseSetNotFound
}

// SlugExists implements store.VerseSetStore.
func (s *VerseSetStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// Update implements store.VerseSetStore.
func (s *VerseSetStore) Update(_ context.Context, set *domain.VerseSet) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cur, ok := s.db.sets[set.ID]
	if !ok {
		return store.ErrVerseSetNotFound
	}
	cur.Name = set.Name
	cur.Description = set.Description
	cur.Public = set.Public
	cur.PassageRef = set.PassageRef
	return nil
}

// ReplaceChoices implements store.VerseSetStore.
func (s *VerseSetStore) ReplaceChoices(_ context.Context, setID uuid.UUID, choices []*domain.VerseChoice) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.sets[setID]; !ok {
		return store.ErrVerseSetNotFound
	}
	s.db.choices[setID] = cloneAll(choices)
	return nil
}

// ListChoices implements store.VerseSetStore.
func (s *VerseSetStore) ListChoices(_ context.Context, setID uuid.UUID) ([]*domain.VerseChoice, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := cloneAll(s.db.choices[setID])
	sort.Slice(out, func(i, j int) bool { return out[i].SetOrder < out[j].SetOrder })
	return out, nil
}

// Search implements store.VerseSetStore.
func (s *VerseSetStore) Search(_ context.Context, params store.VerseSetSearch) ([]*domain.VerseSet, error) {
	q := strings.ToLower(strings.TrimSpace(params.Query))
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.VerseSet
	for _, vs := range s.db.sets {
		if !vs.Public && vs.CreatedByID != params.ViewerID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(vs.Name), q) &&
			!strings.Contains(strings.ToLower(vs.Description), q) {
			continue
		}
		out = append(out, clone(vs))
	}
	sort.Slice(out, func(i, j int) bool {
		if params.Order != store.VerseSetOrderNewest && out[i].Popularity != out[j].Popularity {
			return out[i].Popularity > out[j].Popularity
		}
		return out[i].DateAdded.After(out[j].DateAdded)
	})
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	return paginate(out, limit, params.Offset), nil
}

// IncrementPopularity implements store.VerseSetStore.
func (s *VerseSetStore) IncrementPopularity(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	vs, ok := s.db.sets[id]
	if !ok {
		return store.ErrVerseSetNotFound
	}
	vs.Popularity++
	return nil
}

// CountPublicByCreator implements store.VerseSetStore.
func (s *VerseSetStore) CountPublicByCreator(_ context.Context, accountID uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n := 0
	for _, vs := range s.db.sets {
		if vs.CreatedByID == accountID && vs.Public {
			n++
		}
	}
	return n, nil
}

// CountLearnersOfCreatorSets implements store.VerseSetStore.
func (s *VerseSetStore) CountLearnersOfCreatorSets(_ context.Context, accountID uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	learners := make(map[uuid.UUID]bool)
	for _, st := range s.db.statuses {
		if !st.VerseSetID.Valid || st.AccountID == accountID {
			continue
		}
		if vs, ok := s.db.sets[st.VerseSetID.UUID]; ok && vs.CreatedByID == accountID {
			learners[st.AccountID] = true
		}
	}
	return len(learners), nil
}
