package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/config"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/mocks"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/service/auth"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func newAccountService(f *fixture) (service.AccountService, *mocks.MockJWTService) {
	jwt := &mocks.MockJWTService{Token: "access-token", RefreshToken: "refresh-token"}
	cfg := config.AuthConfig{TokenLifetimeMinutes: 60}
	return service.NewAccountService(f.deps(), jwt, &mocks.MockPasswordVerifier{}, cfg), jwt
}

func registerInput(username string) service.RegisterInput {
	return service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
	}
}

func TestAccountService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newAccountService(f)

	account, tokens, err := svc.Register(ctx, registerInput("alice"))
	require.NoError(t, err)

	assert.Equal(t, "access-token", tokens.AccessToken)
	assert.Equal(t, "refresh-token", tokens.RefreshToken)
	assert.Equal(t, "hashed:correct horse", f.account(t, account.ID).HashedPassword)

	profile, err := svc.GetProfile(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, service.DefaultVersionSlug, profile.Identity.DefaultVersionSlug)
	assert.False(t, profile.Identity.ReferredByID.Valid)

	require.Len(t, f.eventsOfType(domain.EventNewAccount), 1)
	assert.Empty(t, f.emitter.Events(), "no referrer, no award work")
}

func TestAccountService_RegisterWithReferrer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newAccountService(f)
	referrer := f.addAccount(t, "alice")

	in := registerInput("bob")
	in.ReferredBy = "ALICE"
	account, _, err := svc.Register(ctx, in)
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, referrer.ID, profile.Identity.ReferredByID.UUID)
	assert.Equal(t, []uuid.UUID{referrer.ID}, f.recomputedFor())

	in = registerInput("carol")
	in.ReferredBy = "nobody"
	_, _, err = svc.Register(ctx, in)
	require.NoError(t, err, "unknown referrers are ignored")
}

func TestAccountService_RegisterValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(in *service.RegisterInput)
		wantErr error
	}{
		{"short username", func(in *service.RegisterInput) { in.Username = "al" }, domain.ErrInvalidUsername},
		{"bad characters", func(in *service.RegisterInput) { in.Username = "al ice" }, domain.ErrInvalidUsername},
		{"bad email", func(in *service.RegisterInput) { in.Email = "nope" }, domain.ErrInvalidEmail},
		{"short password", func(in *service.RegisterInput) { in.Password = "short" }, domain.ErrInvalidPassword},
		{"taken username", func(in *service.RegisterInput) { in.Username = "Taken" }, store.ErrUsernameExists},
		{"taken email", func(in *service.RegisterInput) { in.Email = "TAKEN@example.com" }, store.ErrEmailExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.addAccount(t, "taken")
			svc, _ := newAccountService(f)

			in := registerInput("newbie")
			tt.mutate(&in)
			_, _, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAccountService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		login    string
		password string
		inactive bool
		wantErr  error
	}{
		{"username", "alice", "password123", false, nil},
		{"email", "alice@example.com", "password123", false, nil},
		{"wrong password", "alice", "guess", false, service.ErrInvalidCredentials},
		{"unknown account", "mallory", "password123", false, service.ErrInvalidCredentials},
		{"inactive", "alice", "password123", true, service.ErrAccountInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			a := f.addAccount(t, "alice")
			if tt.inactive {
				a.IsActive = false
				require.NoError(t, f.db.Stores().Accounts.Update(ctx, a))
			}
			svc, _ := newAccountService(f)

			account, tokens, err := svc.Login(ctx, tt.login, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, a.ID, account.ID)
			assert.NotEmpty(t, tokens.AccessToken)
			assert.Equal(t, f.now, f.account(t, a.ID).LastLogin.Time)
		})
	}
}

func TestAccountService_Refresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	svc, jwt := newAccountService(f)

	jwt.Claims = &auth.Claims{AccountID: a.ID, TokenType: auth.TokenTypeRefresh}
	pair, err := svc.Refresh(ctx, "refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "access-token", pair.AccessToken)

	jwt.Claims = &auth.Claims{AccountID: uuid.New(), TokenType: auth.TokenTypeRefresh}
	_, err = svc.Refresh(ctx, "refresh-token")
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	jwt.Claims, jwt.ValidateErr = nil, auth.ErrExpiredRefreshToken
	_, err = svc.Refresh(ctx, "refresh-token")
	assert.ErrorIs(t, err, auth.ErrExpiredRefreshToken)

	jwt.ValidateErr = nil
	jwt.Err = errors.New("signing failed")
	jwt.Claims = &auth.Claims{AccountID: a.ID, TokenType: auth.TokenTypeRefresh}
	_, err = svc.Refresh(ctx, "refresh-token")
	assert.Error(t, err)
}

func TestAccountService_UpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	a.EmailBounced = null.TimeFrom(f.now)
	require.NoError(t, f.db.Stores().Accounts.Update(ctx, a))
	svc, _ := newAccountService(f)

	first, email, version := "Alice", "Alice.New@Example.com", "web"
	remind := 0
	method := domain.TestingMethodFirstLetter
	profile, err := svc.UpdateProfile(ctx, a.ID, service.ProfileUpdate{
		FirstName:      &first,
		Email:          &email,
		RemindAfter:    &remind,
		DefaultVersion: &version,
		TestingMethod:  &method,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", profile.Account.FirstName)
	assert.Equal(t, "alice.new@example.com", profile.Account.Email)
	assert.False(t, profile.Account.EmailBounced.Valid, "a new address clears the bounce")
	assert.Zero(t, profile.Account.RemindAfter)
	assert.Equal(t, "WEB", profile.Identity.DefaultVersionSlug)
	assert.Equal(t, domain.TestingMethodFirstLetter, profile.Identity.TestingMethod)

	stored, err := svc.GetProfile(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.Account.Email, stored.Account.Email)

	bad := "xx-not a tag-!!"
	_, err = svc.UpdateProfile(ctx, a.ID, service.ProfileUpdate{InterfaceLanguage: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	missing := "NIV"
	_, err = svc.UpdateProfile(ctx, a.ID, service.ProfileUpdate{DefaultVersion: &missing})
	assert.ErrorIs(t, err, store.ErrVersionNotFound)
}

func TestAccountService_Passwords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	svc, _ := newAccountService(f)

	err := svc.ChangePassword(ctx, a.ID, "wrong", "new password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, a.ID, "password123", "tiny")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	require.NoError(t, svc.ChangePassword(ctx, a.ID, "password123", "new password"))
	assert.Equal(t, "hashed:new password", f.account(t, a.ID).HashedPassword)

	require.NoError(t, svc.ResetPassword(ctx, "alice", "another password"))
	_, _, err = svc.Login(ctx, "alice", "another password")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "nobody", "another password"), store.ErrAccountNotFound)
}

func TestAccountService_IsModerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newAccountService(f)

	mod := registerInput("mod")
	mod.Moderator = true
	modAccount, _, err := svc.Register(ctx, mod)
	require.NoError(t, err)
	plain, _, err := svc.Register(ctx, registerInput("plain"))
	require.NoError(t, err)

	ok, err := svc.IsModerator(ctx, modAccount.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsModerator(ctx, plain.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsModerator(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}
