package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Currencies accepted for donations.
var AcceptedCurrencies = map[string]bool{"GBP": true, "USD": true, "EUR": true}

// DonationDrive is a time-boxed fundraising campaign.
type DonationDrive struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Start             time.Time `json:"start" db:"start_time"`
	Finish            time.Time `json:"finish" db:"finish_time"`
	Active            bool      `json:"active" db:"active"`
	MessageHTML       string    `json:"message_html" db:"message_html"`
	TargetCents       int64     `json:"target_cents" db:"target_cents"`
	HideIfDonatedDays int       `json:"hide_if_donated_days" db:"hide_if_donated_days"`
}

// IsCurrent reports whether the drive is running at now.
func (d *DonationDrive) IsCurrent(now time.Time) bool {
	return d.Active && !now.Before(d.Start) && now.Before(d.Finish)
}

// HiddenFor reports whether a donor whose last donation was at lastDonation
// should not see the drive.
func (d *DonationDrive) HiddenFor(lastDonation time.Time, now time.Time) bool {
	if lastDonation.IsZero() {
		return false
	}
	return now.Sub(lastDonation) < time.Duration(d.HideIfDonatedDays)*24*time.Hour
}

// DriveStatus is a drive with its fundraising progress.
type DriveStatus struct {
	Drive       *DonationDrive `json:"drive"`
	RaisedCents int64          `json:"raised_cents"`
	Progress    float64        `json:"progress"`
}

// NewDriveStatus computes progress towards the target.
func NewDriveStatus(d *DonationDrive, raised int64) *DriveStatus {
	s := &DriveStatus{Drive: d, RaisedCents: raised}
	if d.TargetCents > 0 {
		s.Progress = float64(raised) / float64(d.TargetCents)
	}
	return s
}

// Payment is a completed donation.
type Payment struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	AccountID   uuid.NullUUID `json:"account_id" db:"account_id"`
	AmountCents int64         `json:"amount_cents" db:"amount_cents"`
	Currency    string        `json:"currency" db:"currency"`
	TxnID       string        `json:"txn_id" db:"txn_id"`
	PayerEmail  string        `json:"payer_email" db:"payer_email"`
	Created     time.Time     `json:"created" db:"created"`
}

// IPNLog records a raw PayPal instant payment notification.
type IPNLog struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RawBody   string    `json:"raw_body" db:"raw_body"`
	Verified  bool      `json:"verified" db:"verified"`
	Processed bool      `json:"processed" db:"processed"`
	Error     string    `json:"error" db:"error"`
	Created   time.Time `json:"created" db:"created"`
}

// NewIPNLog creates an unverified log entry.
func NewIPNLog(raw string, now time.Time) *IPNLog {
	return &IPNLog{ID: uuid.New(), RawBody: raw, Created: now.UTC()}
}

// ParseAmountCents parses a decimal amount such as "10.5" into cents.
func ParseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" || len(frac) > 2 {
		return 0, NewValidationError("amount", "is not a valid amount", nil)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, NewValidationError("amount", "is not a valid amount", nil)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || f < 0 {
		return 0, NewValidationError("amount", "is not a valid amount", nil)
	}
	return w*100 + f, nil
}

// ParseDonationCustom extracts the account from the "custom" field of a
// notification, which is encoded as "account=<uuid>".
func ParseDonationCustom(custom string) (uuid.NullUUID, error) {
	if strings.TrimSpace(custom) == "" {
		return uuid.NullUUID{}, nil
	}
	values, err := url.ParseQuery(custom)
	if err != nil {
		return uuid.NullUUID{}, fmt.Errorf("%w: malformed custom field", ErrValidation)
	}
	raw := values.Get("account")
	if raw == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}, fmt.Errorf("%w: malformed account id", ErrInvalidID)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

// DonationCustom encodes the "custom" field for a donation form.
func DonationCustom(accountID uuid.UUID) string {
	return url.Values{"account": {accountID.String()}}.Encode()
}
