package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/mocks"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/stretchr/testify/require"
)

var fixtureStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// fixture is an in-memory world with two Bible versions and a clock.
type fixture struct {
	db      *mocks.MemoryDB
	uow     *mocks.UnitOfWork
	emitter *mocks.EventEmitter
	now     time.Time
	kjv     *domain.TextVersion
	web     *domain.TextVersion
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		db:      mocks.NewMemoryDB(),
		emitter: &mocks.EventEmitter{},
		now:     fixtureStart,
		kjv:     &domain.TextVersion{ID: uuid.New(), Slug: "KJV", ShortName: "KJV", FullName: "King James Version", LanguageCode: "en", Public: true},
		web:     &domain.TextVersion{ID: uuid.New(), Slug: "WEB", ShortName: "WEB", FullName: "World English Bible", LanguageCode: "en", Public: true},
	}
	f.uow = mocks.NewUnitOfWork(f.db)
	f.db.AddVersion(f.kjv)
	f.db.AddVersion(f.web)

	f.db.AddVerses(
		verse(f.kjv, 42, 3, 16, 26136, "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life."),
		verse(f.kjv, 42, 3, 17, 26137, "For God sent not his Son into the world to condemn the world; but that the world through him might be saved."),
		verse(f.kjv, 42, 3, 18, 26138, "He that believeth on him is not condemned."),
		verse(f.kjv, 18, 23, 1, 14237, "The LORD is my shepherd; I shall not want."),
		verse(f.kjv, 18, 23, 2, 14238, "He maketh me to lie down in green pastures: he leadeth me beside the still waters."),
		verse(f.web, 18, 23, 1, 14237, "Yahweh is my shepherd: I shall lack nothing."),
	)
	return f
}

func verse(v *domain.TextVersion, book, chapter, number, ordinal int, text string) *domain.Verse {
	ref := domain.ParsedReference{BookNumber: book, StartChapter: chapter, StartVerse: number, EndChapter: chapter, EndVerse: number}
	return &domain.Verse{
		VersionID:          v.ID,
		LocalizedReference: ref.Canonical(),
		Text:               text,
		BookNumber:         book,
		ChapterNumber:      chapter,
		VerseNumber:        number,
		BibleVerseNumber:   ordinal,
	}
}

func (f *fixture) deps() service.Deps {
	return service.Deps{
		UoW:     f.uow,
		Emitter: f.emitter,
		Now:     func() time.Time { return f.now },
	}
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// addAccount stores an active account with a KJV identity.
func (f *fixture) addAccount(t *testing.T, username string) *domain.Account {
	t.Helper()
	ctx := context.Background()
	st := f.db.Stores()

	a, err := domain.NewAccount(username, username+"@example.com", "", "", f.now)
	require.NoError(t, err)
	a.HashedPassword = "hashed:password123"
	require.NoError(t, st.Accounts.Create(ctx, a))
	require.NoError(t, st.Accounts.CreateIdentity(ctx, domain.NewIdentity(a.ID, "KJV")))
	return a
}

func (f *fixture) account(t *testing.T, id uuid.UUID) *domain.Account {
	t.Helper()
	a, err := f.db.Stores().Accounts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (f *fixture) eventsOfType(typ domain.EventType) []*domain.Event {
	var out []*domain.Event
	for _, e := range f.db.Events() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (f *fixture) recomputedFor() []uuid.UUID {
	var ids []uuid.UUID
	for _, p := range f.emitter.AwardRecomputations() {
		ids = append(ids, p.AccountID)
	}
	return ids
}
