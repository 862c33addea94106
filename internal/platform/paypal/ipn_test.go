package paypal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIPN = "txn_id=61E67681CH3238416&payment_status=Completed&receiver_email=donate%40learnscripture.net" +
	"&mc_currency=GBP&mc_gross=10.00&payer_email=donor%40example.com&custom=account%3D5b4e3c1a-0000-4000-8000-000000000001"

func TestParseNotification(t *testing.T) {
	t.Parallel()

	n, err := ParseNotification(sampleIPN)
	require.NoError(t, err)
	assert.Equal(t, "61E67681CH3238416", n.TxnID)
	assert.Equal(t, "Completed", n.PaymentStatus)
	assert.Equal(t, "donate@learnscripture.net", n.ReceiverEmail)
	assert.Equal(t, "GBP", n.Currency)
	assert.Equal(t, "10.00", n.Gross)
	assert.Equal(t, "donor@example.com", n.PayerEmail)
	assert.Equal(t, "account=5b4e3c1a-0000-4000-8000-000000000001", n.Custom)

	_, err = ParseNotification("bad=%zz")
	assert.Error(t, err)
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		answer  string
		want    bool
		wantErr bool
	}{
		{"verified", http.StatusOK, "VERIFIED", true, false},
		{"verified with newline", http.StatusOK, "VERIFIED\n", true, false},
		{"invalid", http.StatusOK, "INVALID", false, false},
		{"server error", http.StatusInternalServerError, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotBody, gotType string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				gotType = r.Header.Get("Content-Type")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.answer))
			}))
			defer srv.Close()

			_, log := logger.NewTestLogger()
			v := NewVerifier(srv.URL, srv.Client(), log)

			ok, err := v.Verify(context.Background(), sampleIPN)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, "cmd=_notify-validate&"+sampleIPN, gotBody)
			assert.Equal(t, "application/x-www-form-urlencoded", gotType)
		})
	}
}

func TestVerifier_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, log := logger.NewTestLogger()
	ok, err := NewVerifier(url, nil, log).Verify(context.Background(), sampleIPN)
	assert.Error(t, err)
	assert.False(t, ok)
}
