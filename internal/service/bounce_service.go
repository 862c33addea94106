package service

import (
	"context"
	"fmt"

	"github.com/phrazzld/learnscripture-api/internal/platform/mailgun"
)

// WebhookVerifier checks the signature of a Mailgun webhook.
type WebhookVerifier interface {
	Verify(sig mailgun.Signature) error
}

// BounceService marks addresses that Mailgun reports as undeliverable.
type BounceService interface {
	// HandleEvent verifies the webhook and returns the number of accounts
	// whose address was marked as bounced.
	HandleEvent(ctx context.Context, hook *mailgun.Webhook) (int64, error)
}

type bounceService struct {
	deps     Deps
	verifier WebhookVerifier
}

// NewBounceService creates a BounceService.
func NewBounceService(deps Deps, verifier WebhookVerifier) BounceService {
	return &bounceService{deps: deps.withComponent("bounce_service"), verifier: verifier}
}

func (s *bounceService) HandleEvent(ctx context.Context, hook *mailgun.Webhook) (int64, error) {
	if err := s.verifier.Verify(hook.Signature); err != nil {
		return 0, fmt.Errorf("failed to verify webhook: %w", err)
	}
	if !hook.EventData.IsBounce() || hook.EventData.Recipient == "" {
		return 0, nil
	}

	n, err := s.deps.UoW.Stores().Accounts.MarkBounced(ctx, hook.EventData.Recipient, s.deps.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark bounce: %w", err)
	}
	s.deps.log(ctx).Info("email bounced",
		"event", hook.EventData.Event,
		"reason", hook.EventData.Reason,
		"accounts", n)
	return n, nil
}
