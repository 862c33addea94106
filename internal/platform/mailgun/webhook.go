// Package mailgun verifies Mailgun event webhooks.
package mailgun

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

// MaxTimestampAge is how old a signed webhook may be.
const MaxTimestampAge = 15 * time.Minute

var (
	// ErrInvalidSignature is returned when the HMAC does not match.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrStaleTimestamp is returned for timestamps outside MaxTimestampAge.
	ErrStaleTimestamp = errors.New("webhook timestamp too old")
	// ErrNotConfigured is returned when no signing key is set.
	ErrNotConfigured = errors.New("mailgun signing key not configured")
)

// Signature is the signature block of a webhook payload.
type Signature struct {
	Timestamp string `json:"timestamp"`
	Token     string `json:"token"`
	Signature string `json:"signature"`
}

// EventData is the subset of event fields used for bounce handling.
type EventData struct {
	Event     string `json:"event"`
	Severity  string `json:"severity"`
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
}

// Webhook is a Mailgun event webhook payload.
type Webhook struct {
	Signature Signature `json:"signature"`
	EventData EventData `json:"event-data"`
}

// IsBounce reports whether the event means the address should no longer
// receive email: a permanent failure or a spam complaint.
func (e EventData) IsBounce() bool {
	switch e.Event {
	case "failed":
		return e.Severity == "permanent"
	case "complained":
		return true
	}
	return false
}

// Sign computes the hex HMAC-SHA256 of timestamp+token.
func Sign(signingKey, timestamp, token string) string {
	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(timestamp + token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verifier checks webhook signatures.
type Verifier struct {
	signingKey string
	now        func() time.Time
}

// NewVerifier creates a verifier for signingKey.
func NewVerifier(signingKey string) *Verifier {
	return &Verifier{signingKey: signingKey, now: time.Now}
}

// Verify checks the signature in constant time and rejects stale timestamps.
func (v *Verifier) Verify(sig Signature) error {
	if v.signingKey == "" {
		return ErrNotConfigured
	}

	expected := Sign(v.signingKey, sig.Timestamp, sig.Token)
	if !hmac.Equal([]byte(expected), []byte(sig.Signature)) {
		return ErrInvalidSignature
	}

	secs, err := strconv.ParseInt(sig.Timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := v.now().Sub(time.Unix(secs, 0))
	if age > MaxTimestampAge || age < -MaxTimestampAge {
		return ErrStaleTimestamp
	}
	return nil
}
