package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// consistencyWindow is the period checked for the consistent learner award.
const consistencyWindow = 7 * 24 * time.Hour

// AwardService grants and lists awards.
type AwardService interface {
	// RecomputeAwards grants every award level the account has reached but
	// does not hold yet and returns the new awards. Awards are never revoked.
	RecomputeAwards(ctx context.Context, accountID uuid.UUID) ([]*domain.Award, error)

	ListAwards(ctx context.Context, accountID uuid.UUID) ([]*domain.Award, error)
	ListAwardsByUsername(ctx context.Context, username string) ([]*domain.Award, error)
	Catalog() []domain.AwardDefinition
}

type awardService struct {
	deps Deps
}

// NewAwardService creates an AwardService.
func NewAwardService(deps Deps) AwardService {
	return &awardService{deps: deps.withComponent("award_service")}
}

func awardCounters(ctx context.Context, st store.Stores, accountID uuid.UUID, now time.Time) (domain.AwardCounters, error) {
	var c domain.AwardCounters

	progress, err := st.Learning.Progress(ctx, accountID, now, learntThreshold)
	if err != nil {
		return c, err
	}
	c.VersesStarted = progress.Started
	c.VersesLearnt = progress.Learnt

	counts := []struct {
		dst *int
		fn  func() (int, error)
	}{
		{&c.PublicSetsCreated, func() (int, error) { return st.VerseSets.CountPublicByCreator(ctx, accountID) }},
		{&c.SetLearners, func() (int, error) { return st.VerseSets.CountLearnersOfCreatorSets(ctx, accountID) }},
		{&c.ConsecutivePerfect, func() (int, error) { return st.Learning.ConsecutivePerfectTests(ctx, accountID) }},
		{&c.Referrals, func() (int, error) { return st.Accounts.CountReferrals(ctx, accountID) }},
		{&c.GroupMembers, func() (int, error) { return st.Groups.CountMembersOfCreatedGroups(ctx, accountID) }},
		{&c.DistinctTestHours, func() (int, error) { return st.Learning.DistinctTestHours(ctx, accountID) }},
		{&c.RecentTestDays, func() (int, error) { return st.Learning.DistinctTestDays(ctx, accountID, now.Add(-consistencyWindow)) }},
	}
	for _, cnt := range counts {
		n, err := cnt.fn()
		if err != nil {
			return c, err
		}
		*cnt.dst = n
	}
	return c, nil
}

func (s *awardService) RecomputeAwards(ctx context.Context, accountID uuid.UUID) ([]*domain.Award, error) {
	now := s.deps.now()
	var granted []*domain.Award

	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		account, err := st.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		counters, err := awardCounters(ctx, st, accountID, now)
		if err != nil {
			return err
		}
		held, err := st.Awards.ListByAccount(ctx, accountID)
		if err != nil {
			return err
		}

		for _, award := range domain.MissingAwards(accountID, counters, held, now) {
			created, err := st.Awards.Create(ctx, award)
			if err != nil {
				return err
			}
			if created {
				granted = append(granted, award)
			}
		}

		// Only the highest new level of each type is announced and scored.
		var logs []*domain.ScoreLog
		top := domain.HighestLevels(granted)
		for _, award := range granted {
			if award.Level != top[award.Type] {
				continue
			}
			if err := st.Events.Create(ctx, domain.NewAwardReceivedEvent(account, award, now)); err != nil {
				return err
			}
			logs = append(logs, domain.NewScoreLog(accountID, domain.AwardPoints(award.Level), domain.ScoreReasonEarnedAward, 0, now))
		}
		_, err = applyPoints(ctx, st, account, logs, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recompute awards: %w", err)
	}

	if len(granted) > 0 {
		s.deps.log(ctx).Info("awards granted", "account_id", accountID, "count", len(granted))
	}
	return granted, nil
}

func (s *awardService) ListAwards(ctx context.Context, accountID uuid.UUID) ([]*domain.Award, error) {
	awards, err := s.deps.UoW.Stores().Awards.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list awards: %w", err)
	}
	return awards, nil
}

func (s *awardService) ListAwardsByUsername(ctx context.Context, username string) ([]*domain.Award, error) {
	account, err := s.deps.UoW.Stores().Accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return s.ListAwards(ctx, account.ID)
}

func (s *awardService) Catalog() []domain.AwardDefinition {
	return domain.AwardCatalog
}
