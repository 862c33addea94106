package sendgrid

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/learnscripture-api/internal/email"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_Send(t *testing.T) {
	t.Parallel()

	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, endpoint, r.URL.Path)
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	_, log := logger.NewTestLogger()
	m := NewMailer("sg-key", "noreply@learnscripture.net", "LearnScripture", log).WithHost(srv.URL)

	err := m.Send(context.Background(), &email.Message{
		To:          "reader@example.com",
		Subject:     "Verses to review",
		TextContent: "hello",
		HTMLContent: "<p>hello</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sg-key", auth)
	from := got["from"].(map[string]any)
	assert.Equal(t, "noreply@learnscripture.net", from["email"])
	content := got["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "text/plain", content[0].(map[string]any)["type"])

	personalizations := got["personalizations"].([]any)
	require.Len(t, personalizations, 1)
	p := personalizations[0].(map[string]any)
	assert.Equal(t, "Verses to review", p["subject"])
}

func TestMailer_Send_Rejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad"}]}`))
	}))
	defer srv.Close()

	_, log := logger.NewTestLogger()
	m := NewMailer("sg-key", "noreply@learnscripture.net", "", log).WithHost(srv.URL)

	err := m.Send(context.Background(), &email.Message{To: "reader@example.com", TextContent: "x"})
	assert.ErrorContains(t, err, "400")
}

func TestMailer_Send_Invalid(t *testing.T) {
	t.Parallel()
	_, log := logger.NewTestLogger()
	m := NewMailer("sg-key", "noreply@learnscripture.net", "", log)

	assert.ErrorIs(t, m.Send(context.Background(), &email.Message{To: "nope", TextContent: "x"}), email.ErrNoRecipient)
	assert.Error(t, m.Send(context.Background(), &email.Message{To: "reader@example.com", TemplateName: email.TemplateReminder}))
}
