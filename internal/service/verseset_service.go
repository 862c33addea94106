package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// VerseSetPageSize is the number of sets per search page.
const VerseSetPageSize = 20

// VerseSetInput describes the content of a set. Selection sets list
// References; passage sets give a single Passage range.
type VerseSetInput struct {
	Name        string
	Description string
	SetType     domain.SetType
	Public      bool
	References  []string
	Passage     string
}

// VerseSetDetail is a set with its choices.
type VerseSetDetail struct {
	Set     *domain.VerseSet      `json:"verse_set"`
	Choices []*domain.VerseChoice `json:"choices"`
}

// VerseSetService manages verse sets and starting to learn them.
type VerseSetService interface {
	Create(ctx context.Context, accountID uuid.UUID, in VerseSetInput) (*VerseSetDetail, error)

	// Update replaces the set's fields and choices. Only the creator may update.
	Update(ctx context.Context, accountID uuid.UUID, slug string, in VerseSetInput) (*VerseSetDetail, error)

	// Get returns a set visible to viewerID. Private sets of other accounts
	// are reported as not found.
	Get(ctx context.Context, viewerID uuid.UUID, slug string) (*VerseSetDetail, error)

	Search(ctx context.Context, viewerID uuid.UUID, query string, order store.VerseSetOrder, page int) ([]*domain.VerseSet, error)

	// StartLearning adds every verse of the set to the account's learning
	// queue in versionSlug (the account's default version when empty) and
	// returns how many new statuses were created.
	StartLearning(ctx context.Context, accountID uuid.UUID, slug, versionSlug string) (int, error)
}

type verseSetService struct {
	deps Deps
}

// NewVerseSetService creates a VerseSetService.
func NewVerseSetService(deps Deps) VerseSetService {
	return &verseSetService{deps: deps.withComponent("verseset_service")}
}

// buildChoices resolves the references of in against version.
func buildChoices(ctx context.Context, st store.Stores, version *domain.TextVersion, set *domain.VerseSet, in VerseSetInput) ([]*domain.VerseChoice, error) {
	var refs []string
	switch set.SetType {
	case domain.SetTypePassage:
		ref, verses, err := resolveReference(ctx, st, version, in.Passage)
		if err != nil {
			return nil, err
		}
		set.PassageRef = ref.Canonical()
		for _, v := range verses {
			refs = append(refs, v.Reference().Canonical())
		}
	default:
		if len(in.References) == 0 {
			return nil, domain.NewValidationError("references", "at least one is required", nil)
		}
		set.PassageRef = ""
		for _, r := range in.References {
			ref, _, err := resolveReference(ctx, st, version, r)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref.Canonical())
		}
	}

	choices := make([]*domain.VerseChoice, len(refs))
	for i, r := range refs {
		choices[i] = &domain.VerseChoice{
			ID:                uuid.New(),
			VerseSetID:        set.ID,
			InternalReference: r,
			SetOrder:          i,
		}
	}
	return choices, nil
}

// uniqueSlug appends -2, -3, ... to base until exists reports it free.
func uniqueSlug(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	if base == "" {
		base = "untitled"
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := exists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func defaultVersion(ctx context.Context, st store.Stores, accountID uuid.UUID, slug string) (*domain.TextVersion, error) {
	if strings.TrimSpace(slug) == "" {
		identity, err := st.Accounts.GetIdentity(ctx, accountID)
		if err != nil {
			return nil, err
		}
		slug = identity.DefaultVersionSlug
	}
	return st.Verses.GetVersionBySlug(ctx, slug)
}

func (s *verseSetService) Create(ctx context.Context, accountID uuid.UUID, in VerseSetInput) (*VerseSetDetail, error) {
	now := s.deps.now()
	set, err := domain.NewVerseSet(in.Name, in.Description, in.SetType, in.Public, accountID, now)
	if err != nil {
		return nil, err
	}

	var choices []*domain.VerseChoice
	err = s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		account, err := st.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		version, err := defaultVersion(ctx, st, accountID, "")
		if err != nil {
			return err
		}
		if choices, err = buildChoices(ctx, st, version, set, in); err != nil {
			return err
		}
		if set.Slug, err = uniqueSlug(ctx, domain.Slugify(set.Name), st.VerseSets.SlugExists); err != nil {
			return err
		}
		if err := st.VerseSets.Create(ctx, set, choices); err != nil {
			return err
		}
		if set.Public {
			return st.Events.Create(ctx, domain.NewVerseSetCreatedEvent(account, set, now))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create verse set: %w", err)
	}

	s.deps.log(ctx).Info("verse set created", "verse_set_id", set.ID, "slug", set.Slug, "choices", len(choices))
	if set.Public {
		s.deps.emit(ctx, s.deps.recomputeAwards(ctx, accountID)...)
	}
	return &VerseSetDetail{Set: set, Choices: choices}, nil
}

func (s *verseSetService) Update(ctx context.Context, accountID uuid.UUID, slug string, in VerseSetInput) (*VerseSetDetail, error) {
	var detail *VerseSetDetail
	var becamePublic bool
	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		set, err := st.VerseSets.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if set.CreatedByID != accountID {
			return ErrNotOwned
		}

		updated, err := domain.NewVerseSet(in.Name, in.Description, set.SetType, in.Public, accountID, set.DateAdded)
		if err != nil {
			return err
		}
		becamePublic = in.Public && !set.Public
		set.Name, set.Description, set.Public = updated.Name, updated.Description, updated.Public

		version, err := defaultVersion(ctx, st, accountID, "")
		if err != nil {
			return err
		}
		choices, err := buildChoices(ctx, st, version, set, in)
		if err != nil {
			return err
		}
		if err := st.VerseSets.Update(ctx, set); err != nil {
			return err
		}
		if err := st.VerseSets.ReplaceChoices(ctx, set.ID, choices); err != nil {
			return err
		}
		detail = &VerseSetDetail{Set: set, Choices: choices}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update verse set: %w", err)
	}
	if becamePublic {
		s.deps.emit(ctx, s.deps.recomputeAwards(ctx, accountID)...)
	}
	return detail, nil
}

func (s *verseSetService) Get(ctx context.Context, viewerID uuid.UUID, slug string) (*VerseSetDetail, error) {
	st := s.deps.UoW.Stores()
	set, err := st.VerseSets.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load verse set: %w", err)
	}
	if !set.Public && set.CreatedByID != viewerID {
		return nil, fmt.Errorf("failed to load verse set: %w", store.ErrVerseSetNotFound)
	}
	choices, err := st.VerseSets.ListChoices(ctx, set.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load choices: %w", err)
	}
	return &VerseSetDetail{Set: set, Choices: choices}, nil
}

func (s *verseSetService) Search(ctx context.Context, viewerID uuid.UUID, query string, order store.VerseSetOrder, page int) ([]*domain.VerseSet, error) {
	if order == "" {
		order = store.VerseSetOrderPopularity
	}
	if order != store.VerseSetOrderPopularity && order != store.VerseSetOrderNewest {
		return nil, domain.NewValidationError("order", "must be popularity or newest", nil)
	}
	sets, err := s.deps.UoW.Stores().VerseSets.Search(ctx, store.VerseSetSearch{
		Query:    query,
		Order:    order,
		ViewerID: viewerID,
		Limit:    VerseSetPageSize,
		Offset:   pageOffset(page, VerseSetPageSize),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search verse sets: %w", err)
	}
	return sets, nil
}

func (s *verseSetService) StartLearning(ctx context.Context, accountID uuid.UUID, slug, versionSlug string) (int, error) {
	now := s.deps.now()
	var created int
	var set *domain.VerseSet

	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		var err error
		if set, err = st.VerseSets.GetBySlug(ctx, slug); err != nil {
			return err
		}
		if !set.Public && set.CreatedByID != accountID {
			return store.ErrVerseSetNotFound
		}
		account, err := st.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		version, err := defaultVersion(ctx, st, accountID, versionSlug)
		if err != nil {
			return err
		}
		choices, err := st.VerseSets.ListChoices(ctx, set.ID)
		if err != nil {
			return err
		}

		before, err := st.Learning.Progress(ctx, accountID, now, learntThreshold)
		if err != nil {
			return err
		}

		setID := uuid.NullUUID{UUID: set.ID, Valid: true}
		order := 0
		for _, c := range choices {
			ref, err := domain.ParseReference(c.InternalReference)
			if err != nil {
				return err
			}
			verses, err := st.Verses.GetVerses(ctx, version.ID, ref)
			if err != nil {
				return err
			}
			for _, v := range verses {
				ok, err := st.Learning.Create(ctx, domain.NewUserVerseStatus(accountID, version.ID, v, setID, order, now))
				if err != nil {
					return err
				}
				if ok {
					created++
				}
				order++
			}
		}
		if created == 0 {
			return nil
		}

		if set.CreatedByID != accountID {
			if err := st.VerseSets.IncrementPopularity(ctx, set.ID); err != nil {
				return err
			}
		}
		if err := st.Events.Create(ctx, domain.NewStartedLearningVerseSetEvent(account, set, now)); err != nil {
			return err
		}
		return recordStartedMilestone(ctx, st, account, before.Started, now)
	})
	if err != nil {
		if errors.Is(err, store.ErrVerseSetNotFound) {
			return 0, fmt.Errorf("failed to start learning: %w", err)
		}
		s.deps.log(ctx).Error("failed to start learning verse set", "slug", slug, "account_id", accountID, "error", err)
		return 0, fmt.Errorf("failed to start learning: %w", err)
	}

	if created > 0 {
		s.deps.emit(ctx, s.deps.recomputeAwards(ctx, accountID, set.CreatedByID)...)
	}
	return created, nil
}

// recordStartedMilestone records a verses-started milestone when the number
// of distinct verses started has crossed one since startedBefore.
func recordStartedMilestone(ctx context.Context, st store.Stores, account *domain.Account, startedBefore int, now time.Time) error {
	after, err := st.Learning.Progress(ctx, account.ID, now, learntThreshold)
	if err != nil {
		return err
	}
	if m := domain.CrossedMilestone(domain.VersesMilestoneBase, startedBefore, after.Started); m > 0 {
		return st.Events.Create(ctx, domain.NewVersesStartedMilestoneEvent(account, m, now))
	}
	return nil
}
