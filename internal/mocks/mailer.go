package mocks

import (
	"context"

	"github.com/phrazzld/learnscripture-api/internal/email"
	"github.com/phrazzld/learnscripture-api/internal/platform/rollbar"
	"github.com/stretchr/testify/mock"
)

// MockMailer is a testify mock of email.Mailer.
type MockMailer struct {
	mock.Mock
}

var _ email.Mailer = (*MockMailer)(nil)

// Send implements email.Mailer.
func (m *MockMailer) Send(ctx context.Context, msg *email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockReporter is a testify mock of rollbar.Reporter.
type MockReporter struct {
	mock.Mock
}

var _ rollbar.Reporter = (*MockReporter)(nil)

// Report implements rollbar.Reporter.
func (m *MockReporter) Report(ctx context.Context, err error, extras map[string]any) {
	m.Called(ctx, err, extras)
}

// Close implements rollbar.Reporter.
func (m *MockReporter) Close() {
	m.Called()
}
