package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/volatiletech/null/v8"
)

// AccountStore is an in-memory store.AccountStore.
type AccountStore struct {
	db *MemoryDB
}

var _ store.AccountStore = (*AccountStore)(nil)

// Create implements store.AccountStore.
func (s *AccountStore) Create(_ context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, a := range s.db.accounts {
		if strings.EqualFold(a.Username, account.Username) {
			return store.ErrUsernameExists
		}
		if a.Email == account.Email {
			return store.ErrEmailExists
		}
	}
	s.db.accounts[account.ID] = clone(account)
	return nil
}

// GetByID implements store.AccountStore.
func (s *AccountStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return clone(a), nil
}

// GetByUsername implements store.AccountStore.
func (s *AccountStore) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, a := range s.db.accounts {
		if strings.EqualFold(a.Username, strings.TrimSpace(username)) {
			return clone(a), nil
		}
	}
	return nil, store.ErrAccountNotFound
}

// GetByEmail implements store.AccountStore.
func (s *AccountStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = domain.NormalizeEmail(email)
	for _, a := range s.db.accounts {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, store.ErrAccountNotFound
}

// Update implements store.AccountStore.
func (s *AccountStore) Update(_ context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cur, ok := s.db.accounts[account.ID]
	if !ok {
		return store.ErrAccountNotFound
	}
	for _, a := range s.db.accounts {
		if a.ID != account.ID && a.Email == account.Email {
			return store.ErrEmailExists
		}
	}
	cur.Username = account.Username
	cur.FirstName = account.FirstName
	cur.LastName = account.LastName
	cur.Email = account.Email
	cur.EmailBounced = account.EmailBounced
	cur.EnableCommenting = account.EnableCommenting
	cur.RemindAfter = account.RemindAfter
	cur.RemindEvery = account.RemindEvery
	cur.IsActive = account.IsActive
	cur.IsModerator = account.IsModerator
	cur.IsHellbanned = account.IsHellbanned
	return nil
}

func (s *AccountStore) modify(id uuid.UUID, fn func(a *domain.Account)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.accounts[id]
	if !ok {
		return store.ErrAccountNotFound
	}
	fn(a)
	return nil
}

// UpdatePassword implements store.AccountStore.
func (s *AccountStore) UpdatePassword(_ context.Context, id uuid.UUID, hashedPassword string) error {
	return s.modify(id, func(a *domain.Account) { a.HashedPassword = hashedPassword })
}

// UpdateLastLogin implements store.AccountStore.
func (s *AccountStore) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return s.modify(id, func(a *domain.Account) { a.LastLogin = null.TimeFrom(at.UTC()) })
}

// AddScore implements store.AccountStore.
func (s *AccountStore) AddScore(_ context.Context, id uuid.UUID, points int) (int, int, error) {
	var before, after int
	err := s.modify(id, func(a *domain.Account) {
		before = a.TotalScore
		a.TotalScore += points
		after = a.TotalScore
	})
	return before, after, err
}

// MarkBounced implements store.AccountStore.
func (s *AccountStore) MarkBounced(_ context.Context, email string, at time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = domain.NormalizeEmail(email)
	var n int64
	for _, a := range s.db.accounts {
		if a.Email == email {
			if !a.EmailBounced.Valid {
				a.EmailBounced = null.TimeFrom(at.UTC())
			}
			n++
		}
	}
	return n, nil
}

// SetLastReminderSent implements store.AccountStore.
func (s *AccountStore) SetLastReminderSent(_ context.Context, id uuid.UUID, at time.Time) error {
	return s.modify(id, func(a *domain.Account) { a.LastReminderSent = null.TimeFrom(at.UTC()) })
}

// ListReminderCandidates implements store.AccountStore.
func (s *AccountStore) ListReminderCandidates(_ context.Context, now time.Time) ([]*domain.ReminderCandidate, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	byAccount := make(map[uuid.UUID]*domain.ReminderCandidate)
	for _, st := range s.db.statuses {
		if st.Ignored || st.MemoryStage != domain.MemoryStageTested || !st.NextTestDue.Valid {
			continue
		}
		a, ok := s.db.accounts[st.AccountID]
		if !ok || !a.IsActive || a.EmailBounced.Valid || a.RemindAfter <= 0 {
			continue
		}
		c, ok := byAccount[a.ID]
		if !ok {
			c = &domain.ReminderCandidate{Account: *a, FirstDue: st.NextTestDue.Time}
			byAccount[a.ID] = c
		}
		if st.NextTestDue.Time.Before(c.FirstDue) {
			c.FirstDue = st.NextTestDue.Time
		}
		if !st.NextTestDue.Time.After(now) {
			c.DueCount++
		}
	}

	var out []*domain.ReminderCandidate
	for _, c := range byAccount {
		if c.DueCount > 0 {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// CountReferrals implements store.AccountStore.
func (s *AccountStore) CountReferrals(_ context.Context, id uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n := 0
	for _, i := range s.db.identities {
		if i.ReferredByID.Valid && i.ReferredByID.UUID == id {
			n++
		}
	}
	return n, nil
}

// CreateIdentity implements store.AccountStore.
func (s *AccountStore) CreateIdentity(_ context.Context, identity *domain.Identity) error {
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.accounts[identity.AccountID]; !ok {
		return store.ErrAccountNotFound
	}
	if _, ok := s.db.identities[identity.AccountID]; ok {
		return store.ErrDuplicate
	}
	s.db.identities[identity.AccountID] = clone(identity)
	return nil
}

// GetIdentity implements store.AccountStore.
func (s *AccountStore) GetIdentity(_ context.Context, accountID uuid.UUID) (*domain.Identity, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i, ok := s.db.identities[accountID]
	if !ok {
		return nil, store.ErrIdentityNotFound
	}
	return clone(i), nil
}

// UpdateIdentity implements store.AccountStore.
func (s *AccountStore) UpdateIdentity(_ context.Context, identity *domain.Identity) error {
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.identities[identity.AccountID]; !ok {
		return store.ErrIdentityNotFound
	}
	s.db.identities[identity.AccountID] = clone(identity)
	return nil
}
