package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/email"
	"github.com/phrazzld/learnscripture-api/internal/events"
	"github.com/phrazzld/learnscripture-api/internal/platform/paypal"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// IPNOutcome describes what happened to a payment notification.
type IPNOutcome string

// Notification outcomes. All of them are acknowledged to PayPal.
const (
	IPNProcessed IPNOutcome = "processed"
	IPNDuplicate IPNOutcome = "duplicate"
	IPNRejected  IPNOutcome = "rejected"
	IPNInvalid   IPNOutcome = "invalid"
)

// PayPalVerifier confirms that a notification came from PayPal.
type PayPalVerifier interface {
	Verify(ctx context.Context, raw string) (bool, error)
}

// DonationService records donations and reports the current donation drive.
type DonationService interface {
	// HandleIPN logs, verifies and applies a raw IPN body. The error is
	// only non-nil when the notification should be retried.
	HandleIPN(ctx context.Context, raw string) (IPNOutcome, error)

	// CurrentDrive returns the running drive for the account, or
	// store.ErrDriveNotFound when there is none or it is hidden.
	CurrentDrive(ctx context.Context, accountID uuid.UUID) (*domain.DriveStatus, error)
}

type donationService struct {
	deps     Deps
	verifier PayPalVerifier
	receiver string
	printer  *message.Printer
}

// NewDonationService creates a DonationService accepting payments made to
// receiverEmail.
func NewDonationService(deps Deps, verifier PayPalVerifier, receiverEmail string) DonationService {
	return &donationService{
		deps:     deps.withComponent("donation_service"),
		verifier: verifier,
		receiver: domain.NormalizeEmail(receiverEmail),
		printer:  message.NewPrinter(language.BritishEnglish),
	}
}

func (s *donationService) HandleIPN(ctx context.Context, raw string) (IPNOutcome, error) {
	st := s.deps.UoW.Stores()
	log := s.deps.log(ctx)

	entry := domain.NewIPNLog(raw, s.deps.now())
	if err := st.Payments.CreateIPNLog(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to log notification: %w", err)
	}
	finish := func(outcome IPNOutcome, reason string) (IPNOutcome, error) {
		entry.Error = reason
		if err := st.Payments.UpdateIPNLog(ctx, entry); err != nil {
			log.Error("failed to update ipn log", "ipn_id", entry.ID, "error", err)
		}
		if reason != "" {
			log.Warn("payment notification not applied", "ipn_id", entry.ID, "outcome", outcome, "reason", reason)
		}
		return outcome, nil
	}

	verified, err := s.verifier.Verify(ctx, raw)
	if err != nil {
		_, _ = finish("", err.Error())
		return "", fmt.Errorf("%w: %v", ErrIPNVerifyFailed, err)
	}
	if !verified {
		return finish(IPNInvalid, ErrIPNNotVerified.Error())
	}
	entry.Verified = true

	n, err := paypal.ParseNotification(raw)
	if err != nil {
		return finish(IPNRejected, err.Error())
	}
	if n.PaymentStatus != "Completed" {
		return finish(IPNRejected, "payment status "+n.PaymentStatus)
	}
	if domain.NormalizeEmail(n.ReceiverEmail) != s.receiver {
		return finish(IPNRejected, "unexpected receiver "+n.ReceiverEmail)
	}
	cur := strings.ToUpper(n.Currency)
	if !domain.AcceptedCurrencies[cur] {
		return finish(IPNRejected, "unsupported currency "+n.Currency)
	}
	amount, err := domain.ParseAmountCents(n.Gross)
	if err != nil || amount <= 0 {
		return finish(IPNRejected, "invalid amount "+n.Gross)
	}
	accountID, err := domain.ParseDonationCustom(n.Custom)
	if err != nil {
		log.Warn("ignoring malformed custom field", "ipn_id", entry.ID, "error", err)
		accountID = uuid.NullUUID{}
	}

	payment := &domain.Payment{
		ID:          uuid.New(),
		AmountCents: amount,
		Currency:    cur,
		TxnID:       n.TxnID,
		PayerEmail:  n.PayerEmail,
		Created:     s.deps.now(),
	}
	var account *domain.Account
	err = s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		if accountID.Valid {
			a, err := st.Accounts.GetByID(ctx, accountID.UUID)
			switch {
			case err == nil:
				account = a
				payment.AccountID = accountID
			case !errors.Is(err, store.ErrAccountNotFound):
				return err
			}
		}
		return st.Payments.CreatePayment(ctx, payment)
	})
	if errors.Is(err, store.ErrTxnExists) {
		entry.Processed = true
		return finish(IPNDuplicate, "")
	}
	if err != nil {
		return "", fmt.Errorf("failed to record payment: %w", err)
	}

	entry.Processed = true
	_, _ = finish(IPNProcessed, "")
	log.Info("donation received", "txn_id", payment.TxnID, "amount_cents", amount, "currency", cur)

	if msg := s.thanks(payment, account); msg != nil {
		ev, err := events.NewSendEmail(*msg)
		if err != nil {
			log.Error("failed to queue thank-you email", "txn_id", payment.TxnID, "error", err)
		} else {
			s.deps.emit(ctx, ev)
		}
	}
	return IPNProcessed, nil
}

func (s *donationService) thanks(p *domain.Payment, account *domain.Account) *email.Message {
	to, name := p.PayerEmail, "friend"
	if account != nil {
		if !account.CanReceiveEmail() {
			return nil
		}
		to, name = account.Email, account.DisplayName()
	}
	if to == "" {
		return nil
	}
	return &email.Message{
		To:           to,
		TemplateName: email.TemplateDonationThanks,
		TemplateData: map[string]any{
			"Name":   name,
			"Amount": s.formatAmount(p.AmountCents, p.Currency),
			"TxnID":  p.TxnID,
		},
	}
}

func (s *donationService) formatAmount(cents int64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, code)
	}
	return s.printer.Sprint(currency.Symbol(unit.Amount(float64(cents) / 100)))
}

func (s *donationService) CurrentDrive(ctx context.Context, accountID uuid.UUID) (*domain.DriveStatus, error) {
	st := s.deps.UoW.Stores()
	now := s.deps.now()

	drive, err := st.Payments.CurrentDrive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load donation drive: %w", err)
	}
	if accountID != uuid.Nil {
		last, err := st.Payments.LastPaymentAt(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to load last donation: %w", err)
		}
		if last.Valid && drive.HiddenFor(last.Time, now) {
			return nil, fmt.Errorf("failed to load donation drive: %w", store.ErrDriveNotFound)
		}
	}
	raised, err := st.Payments.SumPayments(ctx, drive.Start, drive.Finish)
	if err != nil {
		return nil, fmt.Errorf("failed to sum donations: %w", err)
	}
	return domain.NewDriveStatus(drive, raised), nil
}
