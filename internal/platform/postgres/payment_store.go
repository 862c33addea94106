package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/volatiletech/null/v8"
)

const driveColumns = `id, start_time, finish_time, active, message_html, target_cents, hide_if_donated_days`

// PostgresPaymentStore implements store.PaymentStore.
type PostgresPaymentStore struct {
	db store.DBTX
}

// NewPostgresPaymentStore creates a new payment store.
func NewPostgresPaymentStore(db store.DBTX) *PostgresPaymentStore {
	return &PostgresPaymentStore{db: db}
}

var _ store.PaymentStore = (*PostgresPaymentStore)(nil)

// CreateIPNLog records a raw notification.
func (s *PostgresPaymentStore) CreateIPNLog(ctx context.Context, log *domain.IPNLog) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO ipn_logs (id, raw_body, verified, processed, error, created)
		VALUES (:id, :raw_body, :verified, :processed, :error, :created)`, log)
	return MapError(err)
}

// UpdateIPNLog records the outcome of processing a notification.
func (s *PostgresPaymentStore) UpdateIPNLog(ctx context.Context, log *domain.IPNLog) error {
	result, err := sqlx.NamedExecContext(ctx, s.db, `
		UPDATE ipn_logs SET verified = :verified, processed = :processed, error = :error
		WHERE id = :id`, log)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrNotFound)
}

// CreatePayment inserts a payment. A repeated transaction ID yields
// store.ErrTxnExists.
func (s *PostgresPaymentStore) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO payments (id, account_id, amount_cents, currency, txn_id, payer_email, created)
		VALUES (:id, :account_id, :amount_cents, :currency, :txn_id, :payer_email, :created)`, payment)
	return MapError(err)
}

// GetPaymentByTxnID retrieves a payment by its PayPal transaction ID.
func (s *PostgresPaymentStore) GetPaymentByTxnID(ctx context.Context, txnID string) (*domain.Payment, error) {
	var p domain.Payment
	err := sqlx.GetContext(ctx, s.db, &p, `
		SELECT id, account_id, amount_cents, currency, txn_id, payer_email, created
		FROM payments WHERE txn_id = $1`, txnID)
	if err != nil {
		return nil, mapGetError(err, store.ErrPaymentNotFound)
	}
	return &p, nil
}

// LastPaymentAt returns when the account last donated, if ever.
func (s *PostgresPaymentStore) LastPaymentAt(ctx context.Context, accountID uuid.UUID) (null.Time, error) {
	var last null.Time
	if err := sqlx.GetContext(ctx, s.db, &last,
		`SELECT MAX(created) FROM payments WHERE account_id = $1`, accountID); err != nil {
		return null.Time{}, MapError(err)
	}
	return last, nil
}

// SumPayments totals payments received in [from, to).
func (s *PostgresPaymentStore) SumPayments(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := sqlx.GetContext(ctx, s.db, &total,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE created >= $1 AND created < $2`,
		from.UTC(), to.UTC())
	if err != nil {
		return 0, MapError(err)
	}
	return total, nil
}

// CreateDrive inserts a donation drive.
func (s *PostgresPaymentStore) CreateDrive(ctx context.Context, drive *domain.DonationDrive) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO donation_drives (`+driveColumns+`)
		VALUES (:id, :start_time, :finish_time, :active, :message_html, :target_cents, :hide_if_donated_days)`,
		drive)
	return MapError(err)
}

// CurrentDrive returns the active drive running at now, preferring the one
// that started most recently.
func (s *PostgresPaymentStore) CurrentDrive(ctx context.Context, now time.Time) (*domain.DonationDrive, error) {
	var d domain.DonationDrive
	err := sqlx.GetContext(ctx, s.db, &d, `
		SELECT `+driveColumns+`
		FROM donation_drives
		WHERE active AND start_time <= $1 AND finish_time > $1
		ORDER BY start_time DESC
		LIMIT 1`, now.UTC())
	if err != nil {
		return nil, mapGetError(err, store.ErrDriveNotFound)
	}
	return &d, nil
}
