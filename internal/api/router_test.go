package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/api"
	"github.com/phrazzld/learnscripture-api/internal/api/middleware"
	"github.com/phrazzld/learnscripture-api/internal/config"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/mocks"
	"github.com/phrazzld/learnscripture-api/internal/platform/mailgun"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testReceiver = "donate@example.com"

type stubIPNVerifier struct {
	verified bool
	err      error
}

func (s stubIPNVerifier) Verify(context.Context, string) (bool, error) {
	return s.verified, s.err
}

// testServer runs the full router over in-memory stores.
type testServer struct {
	db       *mocks.MemoryDB
	handler  http.Handler
	jwt      auth.JWTService
	accounts service.AccountService
}

func newTestServer(t *testing.T, ipn service.PayPalVerifier) *testServer {
	t.Helper()

	db := mocks.NewMemoryDB()
	kjv := &domain.TextVersion{ID: uuid.New(), Slug: "KJV", ShortName: "KJV", FullName: "King James Version", LanguageCode: "en", Public: true}
	db.AddVersion(kjv)
	db.AddVerses(
		testVerse(kjv, 42, 3, 16, 26136, "For God so loved the world, that he gave his only begotten Son."),
		testVerse(kjv, 18, 23, 1, 14237, "The LORD is my shepherd; I shall not want."),
	)

	cfg := config.AuthConfig{
		JWTSecret:                   strings.Repeat("s", 32),
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 120,
		BCryptCost:                  4,
	}
	jwt, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := service.Deps{
		UoW:     mocks.NewUnitOfWork(db),
		Emitter: &mocks.EventEmitter{},
		Logger:  logger,
	}

	accounts := service.NewAccountService(deps, jwt, &mocks.MockPasswordVerifier{}, cfg)
	scores := service.NewScoreService(deps)
	groups := service.NewGroupService(deps, scores, "https://example.com")
	comments := service.NewCommentService(deps)

	handlers := api.Handlers{
		Auth:      api.NewAuthHandler(accounts, logger),
		Account:   api.NewAccountHandler(accounts, logger),
		Bible:     api.NewBibleHandler(service.NewBibleService(deps)),
		VerseSets: api.NewVerseSetHandler(service.NewVerseSetService(deps)),
		Learning:  api.NewLearningHandler(service.NewLearningService(deps)),
		Scores:    api.NewScoreHandler(scores, groups, service.NewAwardService(deps)),
		Events:    api.NewEventHandler(service.NewEventService(deps), comments),
		Groups:    api.NewGroupHandler(groups, comments),
		Pages:     api.NewPageHandler(service.NewCMSService(deps)),
		Donations: api.NewDonationHandler(service.NewDonationService(deps, ipn, testReceiver), logger),
		Bounces:   api.NewBounceHandler(service.NewBounceService(deps, mailgun.NewVerifier("webhook-key"))),
	}

	return &testServer{
		db: db,
		handler: api.NewRouter(handlers, api.RouterDeps{
			Auth:        middleware.NewAuthMiddleware(jwt),
			IsModerator: accounts.IsModerator,
			Logger:      logger,
		}),
		jwt:      jwt,
		accounts: accounts,
	}
}

func testVerse(v *domain.TextVersion, book, chapter, number, ordinal int, text string) *domain.Verse {
	ref := domain.ParsedReference{BookNumber: book, StartChapter: chapter, StartVerse: number, EndChapter: chapter, EndVerse: number}
	return &domain.Verse{
		VersionID:          v.ID,
		LocalizedReference: ref.Canonical(),
		Text:               text,
		BookNumber:         book,
		ChapterNumber:      chapter,
		VerseNumber:        number,
		BibleVerseNumber:   ordinal,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// register signs up through the API and returns the access token.
func (s *testServer) register(t *testing.T, username string) (string, uuid.UUID) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken, resp.AccountID
}

func (s *testServer) moderator(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	account, _, err := s.accounts.Register(ctx, service.RegisterInput{
		Username:  "moderator",
		Email:     "moderator@example.com",
		Password:  "correct horse",
		Moderator: true,
	})
	require.NoError(t, err)
	token, err := s.jwt.GenerateToken(ctx, account.ID)
	require.NoError(t, err)
	return token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, stubIPNVerifier{verified: true})

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_Accounts(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, stubIPNVerifier{verified: true})
	token, accountID := s.register(t, "alice")

	rec := s.do(t, http.MethodGet, "/api/account", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody[service.Profile](t, rec)
	assert.Equal(t, accountID, profile.Account.ID)
	assert.Equal(t, "alice", profile.Account.Username)
	assert.Equal(t, service.DefaultVersionSlug, profile.Identity.DefaultVersionSlug)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Login: "alice", Password: "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, accountID, decodeBody[api.AuthResponse](t, rec).AccountID)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{"wrong password", http.MethodPost, "/api/auth/login", "", api.LoginRequest{Login: "alice", Password: "nope"}, http.StatusUnauthorized},
		{"duplicate username", http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "correct horse"}, http.StatusConflict},
		{"short password", http.MethodPost, "/api/auth/register", "", api.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "short"}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/auth/login", "", `{"login":"alice","password":"x","extra":1}`, http.StatusBadRequest},
		{"missing token", http.MethodGet, "/api/account", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/account", "garbage", nil, http.StatusUnauthorized},
		{"garbage token on optional route", http.MethodGet, "/api/versesets", "garbage", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_Learning(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, stubIPNVerifier{verified: true})
	token, _ := s.register(t, "learner")

	rec := s.do(t, http.MethodPost, "/api/learning/verses", token, api.AddVerseRequest{Reference: "John 3:16"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	statuses := decodeBody[[]*domain.UserVerseStatus](t, rec)
	require.Len(t, statuses, 1)
	statusPath := "/api/learning/verses/" + statuses[0].ID.String()

	rec = s.do(t, http.MethodGet, "/api/learning/queue?kind=new", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]*domain.UserVerseStatus](t, rec), 1)

	rec = s.do(t, http.MethodPost, statusPath+"/test", token, map[string]any{"accuracy": 1.5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, statusPath+"/test", token, map[string]any{"accuracy": 0.95})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeBody[domain.TestResult](t, rec)
	assert.Positive(t, result.PointsEarned)

	rec = s.do(t, http.MethodGet, "/api/learning/progress", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[domain.LearningProgress](t, rec).Tested)

	other, _ := s.register(t, "other")
	rec = s.do(t, http.MethodPost, statusPath+"/reset", other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/learning/verses/not-a-uuid/seen", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/learning/queue?kind=soon", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, statusPath, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_VerseSets(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, stubIPNVerifier{verified: true})
	token, _ := s.register(t, "creator")

	rec := s.do(t, http.MethodPost, "/api/versesets", token, api.VerseSetRequest{
		Name:       "Favourites",
		SetType:    domain.SetTypeSelection,
		Public:     true,
		References: []string{"John 3:16", "Psalm 23:1"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	detail := decodeBody[service.VerseSetDetail](t, rec)
	require.NotNil(t, detail.Set)
	assert.Len(t, detail.Choices, 2)

	rec = s.do(t, http.MethodGet, "/api/versesets/"+detail.Set.Slug, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/versesets?order=random", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	learner, _ := s.register(t, "learner")
	rec = s.do(t, http.MethodPost, "/api/versesets/"+detail.Set.Slug+"/learn", learner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decodeBody[api.LearnResponse](t, rec).Added)

	rec = s.do(t, http.MethodPut, "/api/versesets/"+detail.Set.Slug, learner, api.VerseSetRequest{
		Name:       "Mine now",
		SetType:    domain.SetTypeSelection,
		References: []string{"John 3:16"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/versesets/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AdminPages(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, stubIPNVerifier{verified: true})
	plain, _ := s.register(t, "plain")
	mod := s.moderator(t)

	body := api.PageRequest{Title: "About", Content: "About us", IsPublic: true, InNavigation: true}

	rec := s.do(t, http.MethodPost, "/api/admin/pages", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/pages", plain, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/pages", mod, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	page := decodeBody[domain.Page](t, rec)

	rec = s.do(t, http.MethodGet, "/api/pages?path="+url.QueryEscape(page.URL), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decodeBody[service.PageView](t, rec)
	assert.Equal(t, "About", view.Page.Title)

	rec = s.do(t, http.MethodGet, "/api/pages/navigation", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	nav := decodeBody[[]*domain.NavItem](t, rec)
	require.Len(t, nav, 1)
	assert.Equal(t, page.URL, nav[0].URL)

	rec = s.do(t, http.MethodDelete, "/api/admin/pages/"+page.ID.String(), mod, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_PayPalIPN(t *testing.T) {
	t.Parallel()

	ipn := url.Values{
		"txn_id":         {"TX-1"},
		"payment_status": {"Completed"},
		"receiver_email": {testReceiver},
		"mc_currency":    {"GBP"},
		"mc_gross":       {"5.00"},
		"payer_email":    {"payer@example.com"},
	}.Encode()

	t.Run("records payment", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, stubIPNVerifier{verified: true})

		rec := s.do(t, http.MethodPost, "/webhooks/paypal/ipn", "", ipn)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, s.db.Payments(), 1)

		rec = s.do(t, http.MethodPost, "/webhooks/paypal/ipn", "", ipn)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, s.db.Payments(), 1)
	})

	t.Run("unverified is acknowledged", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, stubIPNVerifier{verified: false})

		rec := s.do(t, http.MethodPost, "/webhooks/paypal/ipn", "", ipn)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, s.db.Payments())
	})

	t.Run("verification outage asks for a retry", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t, stubIPNVerifier{err: errors.New("connection refused")})

		rec := s.do(t, http.MethodPost, "/webhooks/paypal/ipn", "", ipn)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestRouter_MailgunEvent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, stubIPNVerifier{verified: true})

	rec := s.do(t, http.MethodPost, "/webhooks/mailgun/events", "", mailgun.Webhook{
		Signature: mailgun.Signature{Timestamp: "1", Token: "t", Signature: "forged"},
		EventData: mailgun.EventData{Event: "failed", Severity: "permanent", Recipient: "x@example.com"},
	})
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)

	rec = s.do(t, http.MethodPost, "/webhooks/mailgun/events", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
