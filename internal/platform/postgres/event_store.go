package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

const eventSelect = `
	SELECT e.id, e.account_id, e.event_type, e.message, e.event_data, e.weight, e.created,
		e.parent_event_id, e.url,
		a.username AS account_username, a.is_hellbanned AS account_hellbanned
	FROM events e
	JOIN accounts a ON a.id = e.account_id`

// PostgresEventStore implements store.EventStore.
type PostgresEventStore struct {
	db store.DBTX
}

// NewPostgresEventStore creates a new event store.
func NewPostgresEventStore(db store.DBTX) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

var _ store.EventStore = (*PostgresEventStore)(nil)

// Create inserts an event.
func (s *PostgresEventStore) Create(ctx context.Context, event *domain.Event) error {
	if len(event.EventData) == 0 {
		event.EventData = []byte("{}")
	}
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO events (id, account_id, event_type, message, event_data, weight, created,
			parent_event_id, url)
		VALUES (:id, :account_id, :event_type, :message, :event_data, :weight, :created,
			:parent_event_id, :url)`, event)
	return MapError(err)
}

// GetByID retrieves an event with its author.
func (s *PostgresEventStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var e domain.Event
	if err := sqlx.GetContext(ctx, s.db, &e, eventSelect+` WHERE e.id = $1`, id); err != nil {
		return nil, mapGetError(err, store.ErrEventNotFound)
	}
	return &e, nil
}

// ListSince returns the newest events created after since, for ranking.
func (s *PostgresEventStore) ListSince(ctx context.Context, since time.Time, limit int) ([]*domain.Event, error) {
	var events []*domain.Event
	err := sqlx.SelectContext(ctx, s.db, &events,
		eventSelect+` WHERE e.created >= $1 ORDER BY e.created DESC LIMIT $2`,
		since.UTC(), limit)
	if err != nil {
		return nil, MapError(err)
	}
	return events, nil
}

// ListByAccount returns an account's events, newest first.
func (s *PostgresEventStore) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Event, error) {
	var events []*domain.Event
	err := sqlx.SelectContext(ctx, s.db, &events,
		eventSelect+` WHERE e.account_id = $1 ORDER BY e.created DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, MapError(err)
	}
	return events, nil
}
