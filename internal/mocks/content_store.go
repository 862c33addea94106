package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/volatiletech/null/v8"
)

// PageStore is an in-memory store.PageStore.
type PageStore struct {
	db *MemoryDB
}

var _ store.PageStore = (*PageStore)(nil)

// Create implements store.PageStore.
func (s *PageStore) Create(_ context.Context, page *domain.Page) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, p := range s.db.pages {
		if p.URL == page.URL {
			return store.ErrSlugExists
		}
	}
	s.db.pages[page.ID] = clone(page)
	return nil
}

// GetByID implements store.PageStore.
func (s *PageStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Page, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.pages[id]
	if !ok {
		return nil, store.ErrPageNotFound
	}
	return clone(p), nil
}

// GetByURL implements store.PageStore.
func (s *PageStore) GetByURL(_ context.Context, url string) (*domain.Page, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, p := range s.db.pages {
		if p.URL == url {
			return clone(p), nil
		}
	}
	return nil, store.ErrPageNotFound
}

// ListAll implements store.PageStore.
func (s *PageStore) ListAll(_ context.Context) ([]*domain.Page, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]*domain.Page, 0, len(s.db.pages))
	for _, p := range s.db.pages {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TreeID != out[j].TreeID {
			return out[i].TreeID < out[j].TreeID
		}
		return out[i].Lft < out[j].Lft
	})
	return out, nil
}

// Update implements store.PageStore.
func (s *PageStore) Update(_ context.Context, page *domain.Page) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cur, ok := s.db.pages[page.ID]
	if !ok {
		return store.ErrPageNotFound
	}
	cur.Title = page.Title
	cur.Content = page.Content
	cur.IsPublic = page.IsPublic
	cur.InNavigation = page.InNavigation
	cur.Updated = page.Updated
	return nil
}

// SaveTree implements store.PageStore.
func (s *PageStore) SaveTree(_ context.Context, pages []*domain.Page) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	urls := make(map[string]uuid.UUID)
	for _, p := range s.db.pages {
		urls[p.URL] = p.ID
	}
	for _, p := range pages {
		if _, ok := s.db.pages[p.ID]; !ok {
			return store.ErrPageNotFound
		}
	}
	for _, p := range pages {
		delete(urls, s.db.pages[p.ID].URL)
	}
	for _, p := range pages {
		if _, taken := urls[p.URL]; taken {
			return store.ErrSlugExists
		}
		urls[p.URL] = p.ID
	}
	for _, p := range pages {
		cur := s.db.pages[p.ID]
		cur.ParentID = p.ParentID
		cur.Slug = p.Slug
		cur.URL = p.URL
		cur.Order = p.Order
		cur.Lft = p.Lft
		cur.Rght = p.Rght
		cur.TreeID = p.TreeID
		cur.Level = p.Level
		cur.Updated = p.Updated
	}
	return nil
}

// Delete implements store.PageStore.
func (s *PageStore) Delete(_ context.Context, ids []uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.db.pages[id]; !ok {
			return store.ErrPageNotFound
		}
		delete(s.db.pages, id)
	}
	return nil
}

// PaymentStore is an in-memory store.PaymentStore.
type PaymentStore struct {
	db *MemoryDB
}

var _ store.PaymentStore = (*PaymentStore)(nil)

// CreateIPNLog implements store.PaymentStore.
func (s *PaymentStore) CreateIPNLog(_ context.Context, log *domain.IPNLog) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.ipnLogs[log.ID] = clone(log)
	return nil
}

// UpdateIPNLog implements store.PaymentStore.
func (s *PaymentStore) UpdateIPNLog(_ context.Context, log *domain.IPNLog) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cur, ok := s.db.ipnLogs[log.ID]
	if !ok {
		return store.ErrNotFound
	}
	cur.Verified = log.Verified
	cur.Processed = log.Processed
	cur.Error = log.Error
	return nil
}

// CreatePayment implements store.PaymentStore.
func (s *PaymentStore) CreatePayment(_ context.Context, payment *domain.Payment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, p := range s.db.payments {
		if p.TxnID == payment.TxnID {
			return store.ErrTxnExists
		}
	}
	s.db.payments = append(s.db.payments, clone(payment))
	return nil
}

// GetPaymentByTxnID implements store.PaymentStore.
func (s *PaymentStore) GetPaymentByTxnID(_ context.Context, txnID string) (*domain.Payment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, p := range s.db.payments {
		if p.TxnID == txnID {
			return clone(p), nil
		}
	}
	return nil, store.ErrPaymentNotFound
}

// LastPaymentAt implements store.PaymentStore.
func (s *PaymentStore) LastPaymentAt(_ context.Context, accountID uuid.UUID) (null.Time, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var last null.Time
	for _, p := range s.db.payments {
		if p.AccountID.Valid && p.AccountID.UUID == accountID && (!last.Valid || p.Created.After(last.Time)) {
			last = null.TimeFrom(p.Created)
		}
	}
	return last, nil
}

// SumPayments implements store.PaymentStore.
func (s *PaymentStore) SumPayments(_ context.Context, from, to time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var total int64
	for _, p := range s.db.payments {
		if !p.Created.Before(from) && p.Created.Before(to) {
			total += p.AmountCents
		}
	}
	return total, nil
}

// CreateDrive implements store.PaymentStore.
func (s *PaymentStore) CreateDrive(_ context.Context, drive *domain.DonationDrive) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.drives = append(s.db.drives, clone(drive))
	return nil
}

// CurrentDrive implements store.PaymentStore.
func (s *PaymentStore) CurrentDrive(_ context.Context, now time.Time) (*domain.DonationDrive, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var best *domain.DonationDrive
	for _, d := range s.db.drives {
		if d.IsCurrent(now) && (best == nil || d.Start.After(best.Start)) {
			best = d
		}
	}
	if best == nil {
		return nil, store.ErrDriveNotFound
	}
	return clone(best), nil
}
