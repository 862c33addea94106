// Package email renders notification emails from embedded templates and
// defines the Mailer used to deliver them.
package email

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// Template names.
const (
	TemplateReminder        = "reminder"
	TemplateDonationThanks  = "donation_thanks"
	TemplateGroupInvitation = "group_invitation"
)

// ErrNoRecipient is returned when a message has no usable address.
var ErrNoRecipient = errors.New("email has no valid recipient")

// Message is an email to one recipient. Either TemplateName or the content
// fields must be set; Render fills the content from the template.
type Message struct {
	To           string         `json:"to"`
	Subject      string         `json:"subject,omitempty"`
	TemplateName string         `json:"template_name,omitempty"`
	TemplateData map[string]any `json:"template_data,omitempty"`
	TextContent  string         `json:"text_content,omitempty"`
	HTMLContent  string         `json:"html_content,omitempty"`
}

// Validate checks the recipient and that there is something to send.
func (m *Message) Validate() error {
	if err := domain.ValidateEmail(strings.TrimSpace(m.To)); err != nil {
		return ErrNoRecipient
	}
	if m.TemplateName == "" && m.TextContent == "" && m.HTMLContent == "" {
		return errors.New("email has no content")
	}
	return nil
}

// Mailer delivers rendered messages.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// ConsoleMailer writes messages to the log instead of sending them.
type ConsoleMailer struct {
	from   string
	logger *slog.Logger
}

// NewConsoleMailer creates a mailer for development.
func NewConsoleMailer(from string, logger *slog.Logger) *ConsoleMailer {
	return &ConsoleMailer{from: from, logger: logger.With("component", "console_mailer")}
}

// Send logs the message.
func (m *ConsoleMailer) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "email",
		"from", m.from,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.TextContent)
	return nil
}
