package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/volatiletech/null/v8"
)

// PaymentStore defines persistence for donations.
type PaymentStore interface {
	CreateIPNLog(ctx context.Context, log *domain.IPNLog) error
	UpdateIPNLog(ctx context.Context, log *domain.IPNLog) error

	// CreatePayment returns ErrTxnExists for a repeated transaction id.
	CreatePayment(ctx context.Context, payment *domain.Payment) error
	GetPaymentByTxnID(ctx context.Context, txnID string) (*domain.Payment, error)

	// LastPaymentAt returns when the account last donated, if ever.
	LastPaymentAt(ctx context.Context, accountID uuid.UUID) (null.Time, error)

	// SumPayments adds up payments created in [from, to).
	SumPayments(ctx context.Context, from, to time.Time) (int64, error)

	CreateDrive(ctx context.Context, drive *domain.DonationDrive) error

	// CurrentDrive returns the active drive running at now, or ErrDriveNotFound.
	CurrentDrive(ctx context.Context, now time.Time) (*domain.DonationDrive, error)
}
