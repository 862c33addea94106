package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/phrazzld/learnscripture-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, DriverName), mock
}

func TestAccountStore_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAccountStore(db)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_Create_RejectsInvalid(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAccountStore(db)

	err := s.Create(context.Background(), &domain.Account{ID: uuid.New(), Username: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_AddScore(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAccountStore(db)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE accounts SET total_score = total_score + $2")).
		WithArgs(id, 150).
		WillReturnRows(sqlmock.NewRows([]string{"before", "after"}).AddRow(900, 1050))

	before, after, err := s.AddScore(context.Background(), id, 150)
	require.NoError(t, err)
	assert.Equal(t, 900, before)
	assert.Equal(t, 1050, after)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_MarkBounced(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAccountStore(db)

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET email_bounced = $2 WHERE email = $1 AND email_bounced IS NULL")).
		WithArgs("reader@example.com", at).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := s.MarkBounced(context.Background(), "  Reader@Example.com ", at)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_UpdatePassword_Missing(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAccountStore(db)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET hashed_password = $2 WHERE id = $1")).
		WithArgs(id, "hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdatePassword(context.Background(), id, "hash")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestScoreStore_Leaderboard_AllTime(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresScoreStore(db)

	a, b := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("a.total_score > 0")).
		WithArgs(30, 10).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "username", "points"}).
			AddRow(a.String(), "alice", 5000).
			AddRow(b.String(), "bob", 4000))

	entries, err := s.Leaderboard(context.Background(), store.LeaderboardQuery{Offset: 10})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 11, entries[0].Rank)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, 12, entries[1].Rank)
	assert.Equal(t, 4000, entries[1].Points)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreStore_Leaderboard_PeriodWithAccounts(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresScoreStore(db)

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("a.id = ANY($3::uuid[])")).
		WithArgs(5, 0, sqlmock.AnyArg(), since).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "username", "points"}))

	entries, err := s.Leaderboard(context.Background(), store.LeaderboardQuery{
		Since:      since,
		AccountIDs: []uuid.UUID{uuid.New()},
		Limit:      5,
	})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLearningStore_Create_Conflict(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresLearningStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_verse_statuses.ignored")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	created, err := s.Create(context.Background(), &domain.UserVerseStatus{ID: uuid.New()})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLearningStore_Create_ReactivatesCancelled(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresLearningStore(db)

	existing := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("ignored = FALSE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existing.String()))

	status := &domain.UserVerseStatus{ID: uuid.New()}
	created, err := s.Create(context.Background(), status)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, existing, status.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardStore_Create(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresAwardStore(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (account_id, award_type, level) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := s.Create(context.Background(), &domain.Award{ID: uuid.New(), AccountID: uuid.New(), Level: 1})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStore_SaveTask(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db)

	tk := task.NewMockTask("")
	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(tk.ID(), task.MockTaskType, "{}", "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SaveTask(context.Background(), tk))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStore_GetProcessingTasks(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND updated_at < $2")).
		WithArgs("processing", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "type", "payload", "status", "error_message", "created_at", "updated_at",
		}).AddRow(id.String(), "send_email", []byte(`{"message":{}}`), "processing", "", now, now))

	records, err := s.GetProcessingTasks(context.Background(), time.Minute)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, task.TaskStatusProcessing, records[0].Status)
	assert.JSONEq(t, `{"message":{}}`, string(records[0].Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStore_UpdateTaskStatus_MissingIsNoop(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db)

	id := uuid.New()
	mock.ExpectExec("UPDATE tasks SET status").
		WithArgs("failed", "boom", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.UpdateTaskStatus(context.Background(), id, task.TaskStatusFailed, "boom"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
