package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/domain/memorymodel"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/volatiletech/null/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// QueueSize is the maximum number of statuses returned by a queue.
const QueueSize = 50

// QueueKind selects between new verses and verses due for review.
type QueueKind string

// Queue kinds.
const (
	QueueNew    QueueKind = "new"
	QueueReview QueueKind = "review"
)

var (
	memoryModel     = memorymodel.NewDefault()
	learntThreshold = memoryModel.Params().LearntThreshold

	tracer = otel.Tracer("github.com/phrazzld/learnscripture-api/internal/service")
)

// LearningService tracks the verses an account is learning.
type LearningService interface {
	// AddVerse starts learning every verse of reference outside any set.
	AddVerse(ctx context.Context, accountID uuid.UUID, reference, versionSlug string) ([]*domain.UserVerseStatus, error)

	MarkSeen(ctx context.Context, accountID, statusID uuid.UUID) (*domain.UserVerseStatus, error)

	// RecordTest applies a test result to every status of the account for the
	// same verse and version, awards points and queues award recomputation.
	RecordTest(ctx context.Context, accountID, statusID uuid.UUID, accuracy float64) (*domain.TestResult, error)

	Queue(ctx context.Context, accountID uuid.UUID, kind QueueKind) ([]*domain.UserVerseStatus, error)
	RequestEarlyReview(ctx context.Context, accountID, statusID uuid.UUID) error
	CancelLearning(ctx context.Context, accountID, statusID uuid.UUID) error
	ResetProgress(ctx context.Context, accountID, statusID uuid.UUID) error
	Progress(ctx context.Context, accountID uuid.UUID) (*domain.LearningProgress, error)
}

type learningService struct {
	deps  Deps
	model *memorymodel.Model
}

// NewLearningService creates a LearningService using the default memory model.
func NewLearningService(deps Deps) LearningService {
	return &learningService{deps: deps.withComponent("learning_service"), model: memoryModel}
}

// ownedStatus loads a status and checks that accountID owns it.
func ownedStatus(ctx context.Context, st store.Stores, accountID, statusID uuid.UUID) (*domain.UserVerseStatus, error) {
	status, err := st.Learning.GetByID(ctx, statusID)
	if err != nil {
		return nil, err
	}
	if status.AccountID != accountID {
		return nil, ErrNotOwned
	}
	return status, nil
}

// activeStatus is ownedStatus for statuses that are still being learnt.
// Cancelled statuses are reported as not found.
func activeStatus(ctx context.Context, st store.Stores, accountID, statusID uuid.UUID) (*domain.UserVerseStatus, error) {
	status, err := ownedStatus(ctx, st, accountID, statusID)
	if err != nil {
		return nil, err
	}
	if status.Ignored {
		return nil, store.ErrStatusNotFound
	}
	return status, nil
}

func (s *learningService) AddVerse(ctx context.Context, accountID uuid.UUID, reference, versionSlug string) ([]*domain.UserVerseStatus, error) {
	now := s.deps.now()
	var added []*domain.UserVerseStatus

	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		account, err := st.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		version, err := defaultVersion(ctx, st, accountID, versionSlug)
		if err != nil {
			return err
		}
		_, verses, err := resolveReference(ctx, st, version, reference)
		if err != nil {
			return err
		}
		before, err := st.Learning.Progress(ctx, accountID, now, learntThreshold)
		if err != nil {
			return err
		}
		for i, v := range verses {
			status := domain.NewUserVerseStatus(accountID, version.ID, v, uuid.NullUUID{}, i, now)
			ok, err := st.Learning.Create(ctx, status)
			if err != nil {
				return err
			}
			if ok {
				added = append(added, status)
			}
		}
		if len(added) == 0 {
			return nil
		}
		return recordStartedMilestone(ctx, st, account, before.Started, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add verse: %w", err)
	}

	if len(added) > 0 {
		s.deps.emit(ctx, s.deps.recomputeAwards(ctx, accountID)...)
	}
	return added, nil
}

func (s *learningService) MarkSeen(ctx context.Context, accountID, statusID uuid.UUID) (*domain.UserVerseStatus, error) {
	var status *domain.UserVerseStatus
	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		var err error
		if status, err = activeStatus(ctx, st, accountID, statusID); err != nil {
			return err
		}
		status.MarkSeen(s.deps.now())
		return st.Learning.Update(ctx, status)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark verse seen: %w", err)
	}
	return status, nil
}

func (s *learningService) RecordTest(ctx context.Context, accountID, statusID uuid.UUID, accuracy float64) (*domain.TestResult, error) {
	ctx, span := tracer.Start(ctx, "LearningService.RecordTest")
	defer span.End()
	span.SetAttributes(
		attribute.String("account.id", accountID.String()),
		attribute.String("status.id", statusID.String()),
		attribute.Float64("test.accuracy", accuracy),
	)

	if accuracy < 0 || accuracy > 1 {
		return nil, domain.ErrInvalidAccuracy
	}

	now := s.deps.now()
	result := &domain.TestResult{}

	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		status, err := activeStatus(ctx, st, accountID, statusID)
		if err != nil {
			return err
		}
		account, err := st.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}

		matches, err := st.Learning.ListMatching(ctx, accountID, status.VersionID, status.InternalReference)
		if err != nil {
			return err
		}
		if !containsStatus(matches, status.ID) {
			matches = append(matches, status)
		}

		firstTest := status.MemoryStage < domain.MemoryStageTested
		var elapsed time.Duration
		if status.LastTested.Valid {
			elapsed = now.Sub(status.LastTested.Time)
		}
		strength, err := s.model.StrengthEstimate(status.Strength, accuracy, elapsed, firstTest)
		if err != nil {
			return err
		}
		wasLearnt := !firstTest && s.model.IsLearnt(status.Strength)
		result.BecameLearnt = !wasLearnt && s.model.IsLearnt(strength)
		result.Strength = strength
		result.NextTestDue = s.model.NextTestDue(now, strength)

		for _, m := range matches {
			m.Strength = strength
			m.MemoryStage = domain.MemoryStageTested
			m.LastTested = null.TimeFrom(now)
			m.NextTestDue = null.TimeFrom(result.NextTestDue)
			m.EarlyReviewRequested = false
			if !m.FirstSeen.Valid {
				m.FirstSeen = null.TimeFrom(now)
			}
			if err := st.Learning.Update(ctx, m); err != nil {
				return err
			}
		}
		result.Statuses = matches

		if err := st.Learning.RecordTest(ctx, domain.NewTestRecord(accountID, status.ID, accuracy, now)); err != nil {
			return err
		}

		words, err := wordsIn(ctx, st, status)
		if err != nil {
			return err
		}
		logs := domain.TestScores(accountID, words, accuracy, firstTest, result.BecameLearnt, now)
		if result.PointsEarned, err = applyPoints(ctx, st, account, logs, now); err != nil {
			return err
		}

		if !result.BecameLearnt {
			return nil
		}
		progress, err := st.Learning.Progress(ctx, accountID, now, learntThreshold)
		if err != nil {
			return err
		}
		if m := domain.CrossedMilestone(domain.VersesMilestoneBase, progress.Learnt-1, progress.Learnt); m > 0 {
			return st.Events.Create(ctx, domain.NewVersesFinishedMilestoneEvent(account, m, now))
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, ErrNotOwned) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "record test failed")
		}
		return nil, fmt.Errorf("failed to record test: %w", err)
	}

	span.SetAttributes(
		attribute.Int("test.points", result.PointsEarned),
		attribute.Bool("test.became_learnt", result.BecameLearnt),
	)
	s.deps.log(ctx).Debug("test recorded",
		"status_id", statusID,
		"accuracy", accuracy,
		"strength", result.Strength,
		"points", result.PointsEarned)

	s.deps.emit(ctx, s.deps.recomputeAwards(ctx, accountID)...)
	return result, nil
}

func containsStatus(statuses []*domain.UserVerseStatus, id uuid.UUID) bool {
	for _, st := range statuses {
		if st.ID == id {
			return true
		}
	}
	return false
}

// wordsIn counts the words of the verse text a status refers to.
func wordsIn(ctx context.Context, st store.Stores, status *domain.UserVerseStatus) (int, error) {
	ref, err := domain.ParseReference(status.InternalReference)
	if err != nil {
		return 0, err
	}
	verses, err := st.Verses.GetVerses(ctx, status.VersionID, ref)
	if err != nil {
		return 0, err
	}
	words := 0
	for _, v := range verses {
		words += v.WordCount()
	}
	return words, nil
}

func (s *learningService) Queue(ctx context.Context, accountID uuid.UUID, kind QueueKind) ([]*domain.UserVerseStatus, error) {
	learning := s.deps.UoW.Stores().Learning
	var (
		statuses []*domain.UserVerseStatus
		err      error
	)
	switch kind {
	case QueueReview:
		statuses, err = learning.ReviewQueue(ctx, accountID, s.deps.now(), QueueSize)
	case QueueNew, "":
		statuses, err = learning.NewQueue(ctx, accountID, QueueSize)
	default:
		return nil, domain.NewValidationError("kind", "must be new or review", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}
	return statuses, nil
}

type statusLoader func(ctx context.Context, st store.Stores, accountID, statusID uuid.UUID) (*domain.UserVerseStatus, error)

// updateStatus loads a status with load, applies fn and saves it.
func (s *learningService) updateStatus(ctx context.Context, accountID, statusID uuid.UUID, action string, load statusLoader, fn func(*domain.UserVerseStatus)) error {
	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		status, err := load(ctx, st, accountID, statusID)
		if err != nil {
			return err
		}
		fn(status)
		return st.Learning.Update(ctx, status)
	})
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return nil
}

func (s *learningService) RequestEarlyReview(ctx context.Context, accountID, statusID uuid.UUID) error {
	return s.updateStatus(ctx, accountID, statusID, "request early review", activeStatus, func(st *domain.UserVerseStatus) {
		if st.MemoryStage == domain.MemoryStageTested {
			st.EarlyReviewRequested = true
		}
	})
}

func (s *learningService) CancelLearning(ctx context.Context, accountID, statusID uuid.UUID) error {
	return s.updateStatus(ctx, accountID, statusID, "cancel learning", ownedStatus, func(st *domain.UserVerseStatus) {
		st.Ignored = true
		st.EarlyReviewRequested = false
	})
}

func (s *learningService) ResetProgress(ctx context.Context, accountID, statusID uuid.UUID) error {
	return s.updateStatus(ctx, accountID, statusID, "reset progress", ownedStatus, func(st *domain.UserVerseStatus) {
		st.Reset()
	})
}

func (s *learningService) Progress(ctx context.Context, accountID uuid.UUID) (*domain.LearningProgress, error) {
	p, err := s.deps.UoW.Stores().Learning.Progress(ctx, accountID, s.deps.now(), learntThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return p, nil
}
