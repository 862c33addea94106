package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/config"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/service/auth"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/volatiletech/null/v8"
)

// DefaultVersionSlug is the Bible version given to new accounts.
const DefaultVersionSlug = "KJV"

// PasswordManager hashes and verifies passwords.
type PasswordManager interface {
	auth.PasswordVerifier
	auth.PasswordHasher
}

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	// ReferredBy is the username of the account that referred this one.
	ReferredBy string
	// Moderator is only set by the admin CLI.
	Moderator bool
}

// Profile is an account together with its learning preferences.
type Profile struct {
	Account  *domain.Account  `json:"account"`
	Identity *domain.Identity `json:"identity"`
}

// ProfileUpdate holds the optional fields of a profile change. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	FirstName         *string
	LastName          *string
	Email             *string
	RemindAfter       *int
	RemindEvery       *int
	EnableCommenting  *bool
	DefaultVersion    *string
	TestingMethod     *domain.TestingMethod
	InterfaceLanguage *string
	TrackLearning     *bool
}

// AccountService manages registration, sign-in and profiles.
type AccountService interface {
	// Register creates an account with its identity and returns a token pair.
	Register(ctx context.Context, in RegisterInput) (*domain.Account, *auth.TokenPair, error)

	// Login accepts a username or email. Returns ErrInvalidCredentials or
	// ErrAccountInactive.
	Login(ctx context.Context, login, password string) (*domain.Account, *auth.TokenPair, error)

	// Refresh exchanges a refresh token for a new pair.
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)

	GetProfile(ctx context.Context, accountID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, upd ProfileUpdate) (*Profile, error)

	// ChangePassword requires the current password.
	ChangePassword(ctx context.Context, accountID uuid.UUID, oldPassword, newPassword string) error

	// ResetPassword sets a password without the old one. Used by the admin CLI.
	ResetPassword(ctx context.Context, username, newPassword string) error

	// IsModerator reports false for unknown accounts.
	IsModerator(ctx context.Context, accountID uuid.UUID) (bool, error)
}

type accountService struct {
	deps      Deps
	jwt       auth.JWTService
	passwords PasswordManager
	lifetime  time.Duration
}

// NewAccountService creates an AccountService.
func NewAccountService(deps Deps, jwt auth.JWTService, passwords PasswordManager, cfg config.AuthConfig) AccountService {
	return &accountService{
		deps:      deps.withComponent("account_service"),
		jwt:       jwt,
		passwords: passwords,
		lifetime:  time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
	}
}

func (s *accountService) tokens(ctx context.Context, accountID uuid.UUID) (*auth.TokenPair, error) {
	pair, err := auth.IssueTokenPair(ctx, s.jwt, accountID, s.lifetime, s.deps.now())
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return pair, nil
}

// Register creates the account, records a NEW_ACCOUNT event and asks for the
// referrer's awards to be recomputed.
func (s *accountService) Register(ctx context.Context, in RegisterInput) (*domain.Account, *auth.TokenPair, error) {
	log := s.deps.log(ctx)
	now := s.deps.now()

	account, err := domain.NewAccount(in.Username, in.Email, in.FirstName, in.LastName, now)
	if err != nil {
		return nil, nil, err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, nil, err
	}
	account.IsModerator = in.Moderator

	hashed, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, nil, err
	}
	account.HashedPassword = hashed

	identity := domain.NewIdentity(account.ID, DefaultVersionSlug)
	var referrer uuid.UUID

	err = s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		if ref := strings.TrimSpace(in.ReferredBy); ref != "" {
			r, err := st.Accounts.GetByUsername(ctx, ref)
			switch {
			case err == nil:
				referrer = r.ID
				identity.ReferredByID = uuid.NullUUID{UUID: r.ID, Valid: true}
			case errors.Is(err, store.ErrAccountNotFound):
				log.Debug("ignoring unknown referrer", "referrer", ref)
			default:
				return err
			}
		}
		if err := st.Accounts.Create(ctx, account); err != nil {
			return err
		}
		if err := st.Accounts.CreateIdentity(ctx, identity); err != nil {
			return err
		}
		return st.Events.Create(ctx, domain.NewAccountEvent(account, now))
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("registration rejected", "username", in.Username, "error", err)
		} else {
			log.Error("failed to register account", "username", in.Username, "error", err)
		}
		return nil, nil, fmt.Errorf("failed to register account: %w", err)
	}

	log.Info("account registered", "account_id", account.ID, "username", account.Username)
	s.deps.emit(ctx, s.deps.recomputeAwards(ctx, referrer)...)

	pair, err := s.tokens(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}
	return account, pair, nil
}

// Login checks the password of the account named by login.
func (s *accountService) Login(ctx context.Context, login, password string) (*domain.Account, *auth.TokenPair, error) {
	accounts := s.deps.UoW.Stores().Accounts

	var account *domain.Account
	var err error
	if strings.Contains(login, "@") {
		account, err = accounts.GetByEmail(ctx, login)
	} else {
		account, err = accounts.GetByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := s.passwords.Compare(account.HashedPassword, password); err != nil {
		s.deps.log(ctx).Debug("password mismatch", "account_id", account.ID)
		return nil, nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, nil, ErrAccountInactive
	}

	now := s.deps.now()
	if err := accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, nil, fmt.Errorf("failed to record login: %w", err)
	}
	account.LastLogin = null.TimeFrom(now)

	pair, err := s.tokens(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}
	return account, pair, nil
}

// Refresh validates the refresh token and issues a new pair for an active account.
func (s *accountService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	account, err := s.deps.UoW.Stores().Accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !account.IsActive {
		return nil, ErrAccountInactive
	}
	return s.tokens(ctx, account.ID)
}

// GetProfile returns the account and its identity.
func (s *accountService) GetProfile(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	st := s.deps.UoW.Stores()
	account, err := st.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	identity, err := st.Accounts.GetIdentity(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	return &Profile{Account: account, Identity: identity}, nil
}

// UpdateProfile applies upd. A new email address clears the bounce flag.
func (s *accountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, upd ProfileUpdate) (*Profile, error) {
	var profile *Profile
	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		account, err := st.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		identity, err := st.Accounts.GetIdentity(ctx, accountID)
		if err != nil {
			return err
		}

		if upd.FirstName != nil {
			account.FirstName = strings.TrimSpace(*upd.FirstName)
		}
		if upd.LastName != nil {
			account.LastName = strings.TrimSpace(*upd.LastName)
		}
		if upd.Email != nil {
			email := domain.NormalizeEmail(*upd.Email)
			if email != account.Email {
				account.Email = email
				account.EmailBounced = null.Time{}
			}
		}
		if upd.RemindAfter != nil {
			account.RemindAfter = *upd.RemindAfter
		}
		if upd.RemindEvery != nil {
			account.RemindEvery = *upd.RemindEvery
		}
		if upd.EnableCommenting != nil {
			account.EnableCommenting = *upd.EnableCommenting
		}
		if err := account.Validate(); err != nil {
			return err
		}

		if upd.DefaultVersion != nil {
			v, err := st.Verses.GetVersionBySlug(ctx, *upd.DefaultVersion)
			if err != nil {
				return err
			}
			identity.DefaultVersionSlug = v.Slug
		}
		if upd.TestingMethod != nil {
			identity.TestingMethod = *upd.TestingMethod
		}
		if upd.InterfaceLanguage != nil {
			identity.InterfaceLanguage = *upd.InterfaceLanguage
		}
		if upd.TrackLearning != nil {
			identity.TrackLearning = *upd.TrackLearning
		}
		if err := identity.Validate(); err != nil {
			return err
		}

		if err := st.Accounts.Update(ctx, account); err != nil {
			return err
		}
		if err := st.Accounts.UpdateIdentity(ctx, identity); err != nil {
			return err
		}
		profile = &Profile{Account: account, Identity: identity}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// ChangePassword replaces the password after checking the old one.
func (s *accountService) ChangePassword(ctx context.Context, accountID uuid.UUID, oldPassword, newPassword string) error {
	accounts := s.deps.UoW.Stores().Accounts
	account, err := accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if err := s.passwords.Compare(account.HashedPassword, oldPassword); err != nil {
		return ErrInvalidCredentials
	}
	return s.setPassword(ctx, account.ID, newPassword)
}

// ResetPassword sets the password of the named account.
func (s *accountService) ResetPassword(ctx context.Context, username, newPassword string) error {
	account, err := s.deps.UoW.Stores().Accounts.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	return s.setPassword(ctx, account.ID, newPassword)
}

func (s *accountService) setPassword(ctx context.Context, accountID uuid.UUID, password string) error {
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}
	hashed, err := s.passwords.Hash(password)
	if err != nil {
		return err
	}
	if err := s.deps.UoW.Stores().Accounts.UpdatePassword(ctx, accountID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.deps.log(ctx).Info("password changed", "account_id", accountID)
	return nil
}

func (s *accountService) IsModerator(ctx context.Context, accountID uuid.UUID) (bool, error) {
	return isModerator(ctx, s.deps.UoW.Stores(), accountID)
}
