package mailgun

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ts := func(d time.Duration) string { return strconv.FormatInt(now.Add(d).Unix(), 10) }

	tests := []struct {
		name string
		key  string
		sig  Signature
		want error
	}{
		{
			name: "valid",
			key:  "key-1",
			sig:  Signature{Timestamp: ts(-time.Minute), Token: "tok", Signature: Sign("key-1", ts(-time.Minute), "tok")},
		},
		{
			name: "wrong key",
			key:  "key-1",
			sig:  Signature{Timestamp: ts(0), Token: "tok", Signature: Sign("other", ts(0), "tok")},
			want: ErrInvalidSignature,
		},
		{
			name: "tampered token",
			key:  "key-1",
			sig:  Signature{Timestamp: ts(0), Token: "tok2", Signature: Sign("key-1", ts(0), "tok")},
			want: ErrInvalidSignature,
		},
		{
			name: "stale",
			key:  "key-1",
			sig:  Signature{Timestamp: ts(-16 * time.Minute), Token: "tok", Signature: Sign("key-1", ts(-16*time.Minute), "tok")},
			want: ErrStaleTimestamp,
		},
		{
			name: "non-numeric timestamp",
			key:  "key-1",
			sig:  Signature{Timestamp: "yesterday", Token: "tok", Signature: Sign("key-1", "yesterday", "tok")},
			want: ErrInvalidSignature,
		},
		{
			name: "no key",
			sig:  Signature{Timestamp: ts(0), Token: "tok", Signature: "x"},
			want: ErrNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := NewVerifier(tt.key)
			v.now = func() time.Time { return now }

			err := v.Verify(tt.sig)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestEventData_IsBounce(t *testing.T) {
	t.Parallel()

	assert.True(t, EventData{Event: "failed", Severity: "permanent"}.IsBounce())
	assert.False(t, EventData{Event: "failed", Severity: "temporary"}.IsBounce())
	assert.True(t, EventData{Event: "complained"}.IsBounce())
	assert.False(t, EventData{Event: "delivered"}.IsBounce())
}

func TestWebhook_Decode(t *testing.T) {
	t.Parallel()

	raw := `{"signature":{"timestamp":"1714564800","token":"abc","signature":"def"},
		"event-data":{"event":"failed","severity":"permanent","recipient":"gone@example.com"}}`

	var w Webhook
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	assert.Equal(t, "abc", w.Signature.Token)
	assert.Equal(t, "gone@example.com", w.EventData.Recipient)
	assert.True(t, w.EventData.IsBounce())
}
