package email

import (
	"context"
	"testing"

	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	require.NoError(t, err)

	tests := []struct {
		name        string
		msg         Message
		wantSubject string
		wantText    []string
		wantHTML    []string
	}{
		{
			name: "reminder plural",
			msg: Message{To: "a@example.com", TemplateName: TemplateReminder, TemplateData: map[string]any{
				"Name": "Anna", "DueCount": 3, "FirstDue": "2 days ago",
				"URL": "https://example.com/learn", "SettingsURL": "https://example.com/account",
			}},
			wantSubject: "You have 3 verses to review",
			wantText:    []string{"Hi Anna,", "became due 2 days ago", "https://example.com/learn"},
			wantHTML:    []string{"<strong>3</strong>", `href="https://example.com/account"`},
		},
		{
			name: "reminder singular from JSON number",
			msg: Message{To: "a@example.com", TemplateName: TemplateReminder, TemplateData: map[string]any{
				"Name": "Ben", "DueCount": float64(1), "FirstDue": "an hour ago",
			}},
			wantSubject: "You have 1 verse to review",
			wantText:    []string{"1 verse waiting"},
		},
		{
			name: "group invitation",
			msg: Message{To: "c@example.com", TemplateName: TemplateGroupInvitation, TemplateData: map[string]any{
				"Name": "Cara", "InvitedBy": "dave", "GroupName": "Romans <Road>", "MemberCount": 1200,
				"URL": "https://example.com/groups/romans-road",
			}},
			wantSubject: "dave invited you to join Romans <Road>",
			wantText:    []string{"1,200 members"},
			wantHTML:    []string{"Romans &lt;Road&gt;"},
		},
		{
			name: "donation thanks",
			msg: Message{To: "d@example.com", TemplateName: TemplateDonationThanks, TemplateData: map[string]any{
				"Name": "Dan", "Amount": "10.00 GBP", "TxnID": "TX1",
			}},
			wantSubject: "Thank you for your donation",
			wantText:    []string{"10.00 GBP", "TX1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg := tt.msg
			require.NoError(t, r.Render(&msg))
			assert.Equal(t, tt.wantSubject, msg.Subject)
			for _, s := range tt.wantText {
				assert.Contains(t, msg.TextContent, s)
			}
			for _, s := range tt.wantHTML {
				assert.Contains(t, msg.HTMLContent, s)
			}
		})
	}
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	require.NoError(t, err)

	err = r.Render(&Message{To: "a@example.com", TemplateName: "nope"})
	assert.Error(t, err)
}

func TestRenderer_NoTemplateLeavesContent(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	require.NoError(t, err)

	msg := &Message{To: "a@example.com", Subject: "Hi", TextContent: "plain"}
	require.NoError(t, r.Render(msg))
	assert.Equal(t, "plain", msg.TextContent)
}

func TestConsoleMailer_Send(t *testing.T) {
	t.Parallel()

	buf, log := logger.NewTestLogger()
	m := NewConsoleMailer("noreply@example.com", log)

	err := m.Send(context.Background(), &Message{To: "a@example.com", Subject: "Hello", TextContent: "body"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Hello")

	err = m.Send(context.Background(), &Message{To: "not-an-email", TextContent: "body"})
	assert.ErrorIs(t, err, ErrNoRecipient)

	err = m.Send(context.Background(), &Message{To: "a@example.com"})
	assert.Error(t, err)
}
