package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// MemoryDB holds every table of the in-memory stores. All stores created
// from one MemoryDB share its data and its lock.
type MemoryDB struct {
	mu sync.Mutex

	accounts    map[uuid.UUID]*domain.Account
	identities  map[uuid.UUID]*domain.Identity
	versions    []*domain.TextVersion
	verses      []*domain.Verse
	sets        map[uuid.UUID]*domain.VerseSet
	choices     map[uuid.UUID][]*domain.VerseChoice
	statuses    map[uuid.UUID]*domain.UserVerseStatus
	tests       []*domain.TestRecord
	scoreLogs   []*domain.ScoreLog
	awards      []*domain.Award
	events      []*domain.Event
	groups      map[uuid.UUID]*domain.Group
	memberships []*domain.Membership
	invitations []*domain.Invitation
	comments    map[uuid.UUID]*domain.Comment
	pages       map[uuid.UUID]*domain.Page
	ipnLogs     map[uuid.UUID]*domain.IPNLog
	payments    []*domain.Payment
	drives      []*domain.DonationDrive
}

// NewMemoryDB creates an empty database.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		accounts:   make(map[uuid.UUID]*domain.Account),
		identities: make(map[uuid.UUID]*domain.Identity),
		sets:       make(map[uuid.UUID]*domain.VerseSet),
		choices:    make(map[uuid.UUID][]*domain.VerseChoice),
		statuses:   make(map[uuid.UUID]*domain.UserVerseStatus),
		groups:     make(map[uuid.UUID]*domain.Group),
		comments:   make(map[uuid.UUID]*domain.Comment),
		pages:      make(map[uuid.UUID]*domain.Page),
		ipnLogs:    make(map[uuid.UUID]*domain.IPNLog),
	}
}

// Stores returns the in-memory implementation of every store.
func (db *MemoryDB) Stores() store.Stores {
	return store.Stores{
		Accounts:  &AccountStore{db: db},
		Verses:    &VerseStore{db: db},
		VerseSets: &VerseSetStore{db: db},
		Learning:  &LearningStore{db: db},
		Scores:    &ScoreStore{db: db},
		Awards:    &AwardStore{db: db},
		Events:    &EventStore{db: db},
		Groups:    &GroupStore{db: db},
		Comments:  &CommentStore{db: db},
		Pages:     &PageStore{db: db},
		Payments:  &PaymentStore{db: db},
	}
}

// AddVersion seeds a Bible version.
func (db *MemoryDB) AddVersion(v *domain.TextVersion) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.versions = append(db.versions, clone(v))
}

// AddVerses seeds verse text.
func (db *MemoryDB) AddVerses(verses ...*domain.Verse) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, v := range verses {
		db.verses = append(db.verses, clone(v))
	}
}

// ScoreLogs returns a copy of every score log.
func (db *MemoryDB) ScoreLogs() []*domain.ScoreLog {
	db.mu.Lock()
	defer db.mu.Unlock()
	return cloneAll(db.scoreLogs)
}

// Events returns a copy of every event, oldest first.
func (db *MemoryDB) Events() []*domain.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	return cloneAll(db.events)
}

// TestRecords returns a copy of the test history.
func (db *MemoryDB) TestRecords() []*domain.TestRecord {
	db.mu.Lock()
	defer db.mu.Unlock()
	return cloneAll(db.tests)
}

// Payments returns a copy of every payment.
func (db *MemoryDB) Payments() []*domain.Payment {
	db.mu.Lock()
	defer db.mu.Unlock()
	return cloneAll(db.payments)
}

// IPNLogs returns a copy of every IPN log.
func (db *MemoryDB) IPNLogs() []*domain.IPNLog {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]*domain.IPNLog, 0, len(db.ipnLogs))
	for _, l := range db.ipnLogs {
		out = append(out, clone(l))
	}
	return out
}

// tables is a copy of every table, taken by UnitOfWork.Do so a failed unit
// of work can be undone.
type tables struct {
	accounts    map[uuid.UUID]*domain.Account
	identities  map[uuid.UUID]*domain.Identity
	versions    []*domain.TextVersion
	verses      []*domain.Verse
	sets        map[uuid.UUID]*domain.VerseSet
	choices     map[uuid.UUID][]*domain.VerseChoice
	statuses    map[uuid.UUID]*domain.UserVerseStatus
	tests       []*domain.TestRecord
	scoreLogs   []*domain.ScoreLog
	awards      []*domain.Award
	events      []*domain.Event
	groups      map[uuid.UUID]*domain.Group
	memberships []*domain.Membership
	invitations []*domain.Invitation
	comments    map[uuid.UUID]*domain.Comment
	pages       map[uuid.UUID]*domain.Page
	ipnLogs     map[uuid.UUID]*domain.IPNLog
	payments    []*domain.Payment
	drives      []*domain.DonationDrive
}

func (db *MemoryDB) snapshot() tables {
	db.mu.Lock()
	defer db.mu.Unlock()
	choices := make(map[uuid.UUID][]*domain.VerseChoice, len(db.choices))
	for id, cs := range db.choices {
		choices[id] = cloneAll(cs)
	}
	return tables{
		accounts:    cloneMap(db.accounts),
		identities:  cloneMap(db.identities),
		versions:    cloneAll(db.versions),
		verses:      cloneAll(db.verses),
		sets:        cloneMap(db.sets),
		choices:     choices,
		statuses:    cloneMap(db.statuses),
		tests:       cloneAll(db.tests),
		scoreLogs:   cloneAll(db.scoreLogs),
		awards:      cloneAll(db.awards),
		events:      cloneAll(db.events),
		groups:      cloneMap(db.groups),
		memberships: cloneAll(db.memberships),
		invitations: cloneAll(db.invitations),
		comments:    cloneMap(db.comments),
		pages:       cloneMap(db.pages),
		ipnLogs:     cloneMap(db.ipnLogs),
		payments:    cloneAll(db.payments),
		drives:      cloneAll(db.drives),
	}
}

func (db *MemoryDB) restore(t tables) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.accounts, db.identities = t.accounts, t.identities
	db.versions, db.verses = t.versions, t.verses
	db.sets, db.choices, db.statuses = t.sets, t.choices, t.statuses
	db.tests, db.scoreLogs, db.awards, db.events = t.tests, t.scoreLogs, t.awards, t.events
	db.groups, db.memberships, db.invitations = t.groups, t.memberships, t.invitations
	db.comments, db.pages = t.comments, t.pages
	db.ipnLogs, db.payments, db.drives = t.ipnLogs, t.payments, t.drives
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneAll[T any](vs []*T) []*T {
	out := make([]*T, 0, len(vs))
	for _, v := range vs {
		out = append(out, clone(v))
	}
	return out
}

func cloneMap[K comparable, T any](m map[K]*T) map[K]*T {
	out := make(map[K]*T, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// UnitOfWork runs functions against a MemoryDB. When fn fails, Do puts every
// table back as it was before the call. Concurrent units of work are not
// isolated from each other.
type UnitOfWork struct {
	DB *MemoryDB

	// DoErr, when set, is returned by Do without calling fn.
	DoErr error

	// Calls counts invocations of Do.
	Calls int
}

// NewUnitOfWork creates a unit of work over db.
func NewUnitOfWork(db *MemoryDB) *UnitOfWork {
	return &UnitOfWork{DB: db}
}

var _ store.UnitOfWork = (*UnitOfWork)(nil)

// Stores implements store.UnitOfWork.
func (u *UnitOfWork) Stores() store.Stores {
	return u.DB.Stores()
}

// Do implements store.UnitOfWork.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	u.Calls++
	if u.DoErr != nil {
		return u.DoErr
	}
	before := u.DB.snapshot()
	if err := fn(ctx, u.DB.Stores()); err != nil {
		u.DB.restore(before)
		return err
	}
	return nil
}
