// Package sendgrid delivers email through the SendGrid v3 API.
package sendgrid

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/learnscripture-api/internal/email"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	defaultHost = "https://api.sendgrid.com"
	endpoint    = "/v3/mail/send"
)

// Mailer implements email.Mailer.
type Mailer struct {
	key    string
	host   string
	from   *sgmail.Email
	logger *slog.Logger
}

var _ email.Mailer = (*Mailer)(nil)

// NewMailer creates a SendGrid mailer sending from fromName <fromAddress>.
func NewMailer(apiKey, fromAddress, fromName string, logger *slog.Logger) *Mailer {
	return &Mailer{
		key:    apiKey,
		host:   defaultHost,
		from:   sgmail.NewEmail(fromName, fromAddress),
		logger: logger.With("component", "sendgrid"),
	}
}

// WithHost points the mailer at a different API host.
func (m *Mailer) WithHost(host string) *Mailer {
	m.host = host
	return m
}

func (m *Mailer) prepare(msg *email.Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	if msg.TextContent != "" {
		v3.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return v3
}

// Send delivers a rendered message. Any response of 400 or above is an error.
func (m *Mailer) Send(ctx context.Context, msg *email.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if msg.TextContent == "" && msg.HTMLContent == "" {
		return fmt.Errorf("email %q has not been rendered", msg.TemplateName)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(m.key, endpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		m.logger.ErrorContext(ctx, "sending email failed", "template", msg.TemplateName, "error", err)
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		m.logger.ErrorContext(ctx, "sendgrid rejected email",
			"template", msg.TemplateName,
			"status", res.StatusCode,
			"body", res.Body)
		return fmt.Errorf("sendgrid returned status %d", res.StatusCode)
	}

	m.logger.DebugContext(ctx, "email sent", "template", msg.TemplateName, "status", res.StatusCode)
	return nil
}
