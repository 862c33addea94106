// Package paypal verifies and parses PayPal instant payment notifications.
package paypal

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// SandboxVerifyURL is PayPal's sandbox IPN verification endpoint.
	SandboxVerifyURL = "https://ipnpb.sandbox.paypal.com/cgi-bin/webscr"
	// LiveVerifyURL is PayPal's production IPN verification endpoint.
	LiveVerifyURL = "https://ipnpb.paypal.com/cgi-bin/webscr"

	verifiedResponse = "VERIFIED"
)

// Notification holds the fields of an IPN message used for donations.
type Notification struct {
	TxnID         string
	PaymentStatus string
	ReceiverEmail string
	Currency      string
	Gross         string
	PayerEmail    string
	Custom        string
}

// ParseNotification decodes a form-encoded IPN body.
func ParseNotification(raw string) (*Notification, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, errors.Wrap(err, "malformed ipn body")
	}
	return &Notification{
		TxnID:         values.Get("txn_id"),
		PaymentStatus: values.Get("payment_status"),
		ReceiverEmail: values.Get("receiver_email"),
		Currency:      values.Get("mc_currency"),
		Gross:         values.Get("mc_gross"),
		PayerEmail:    values.Get("payer_email"),
		Custom:        values.Get("custom"),
	}, nil
}

// Verifier posts notifications back to PayPal for validation.
type Verifier struct {
	verifyURL string
	client    *http.Client
	logger    *slog.Logger
}

// NewVerifier creates a verifier. A nil client gets a 30s timeout client.
func NewVerifier(verifyURL string, client *http.Client, logger *slog.Logger) *Verifier {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Verifier{verifyURL: verifyURL, client: client, logger: logger.With("component", "paypal_ipn")}
}

// Verify reports whether PayPal answered VERIFIED for the raw body. Transport
// failures and non-200 responses are returned as errors so the notification
// can be retried.
func (v *Verifier) Verify(ctx context.Context, raw string) (bool, error) {
	body := "cmd=_notify-validate"
	if raw != "" {
		body += "&" + raw
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(body))
	if err != nil {
		return false, errors.Wrap(err, "build ipn verification request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "learnscripture-ipn-verifier")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "ipn verification request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, errors.Errorf("ipn verification returned status %d", resp.StatusCode)
	}

	answer, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return false, errors.Wrap(err, "read ipn verification response")
	}

	verified := strings.TrimSpace(string(answer)) == verifiedResponse
	if !verified {
		v.logger.WarnContext(ctx, "ipn not verified", "response", strings.TrimSpace(string(answer)))
	}
	return verified, nil
}
