package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"golang.org/x/text/language"
)

// Password length limits. 72 is bcrypt's practical limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{3,30}$`)

// TestingMethod is how a learner is tested on a verse.
type TestingMethod string

// Supported testing methods.
const (
	TestingMethodFullWords   TestingMethod = "full_words"
	TestingMethodFirstLetter TestingMethod = "first_letter"
	TestingMethodOnScreen    TestingMethod = "on_screen"
)

// Valid reports whether m is a known testing method.
func (m TestingMethod) Valid() bool {
	switch m {
	case TestingMethodFullWords, TestingMethodFirstLetter, TestingMethodOnScreen:
		return true
	}
	return false
}

// Account is a registered user of the site.
type Account struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Username         string    `json:"username" db:"username"`
	Email            string    `json:"email" db:"email"`
	FirstName        string    `json:"first_name" db:"first_name"`
	LastName         string    `json:"last_name" db:"last_name"`
	HashedPassword   string    `json:"-" db:"hashed_password"`
	DateJoined       time.Time `json:"date_joined" db:"date_joined"`
	LastLogin        null.Time `json:"last_login" db:"last_login"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	IsModerator      bool      `json:"is_moderator" db:"is_moderator"`
	IsHellbanned     bool      `json:"-" db:"is_hellbanned"`
	EnableCommenting bool      `json:"enable_commenting" db:"enable_commenting"`
	EmailBounced     null.Time `json:"email_bounced" db:"email_bounced"`
	RemindAfter      int       `json:"remind_after" db:"remind_after"`
	RemindEvery      int       `json:"remind_every" db:"remind_every"`
	LastReminderSent null.Time `json:"last_reminder_sent" db:"last_reminder_sent"`
	TotalScore       int       `json:"total_score" db:"total_score"`
}

// NewAccount builds an active account with default reminder settings.
// The caller hashes the password separately.
func NewAccount(username, email, firstName, lastName string, now time.Time) (*Account, error) {
	a := &Account{
		ID:               uuid.New(),
		Username:         strings.TrimSpace(username),
		Email:            NormalizeEmail(email),
		FirstName:        strings.TrimSpace(firstName),
		LastName:         strings.TrimSpace(lastName),
		DateJoined:       now.UTC(),
		IsActive:         true,
		EnableCommenting: true,
		RemindAfter:      2,
		RemindEvery:      3,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the identity fields of the account.
func (a *Account) Validate() error {
	if a.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if !usernamePattern.MatchString(a.Username) {
		return ErrInvalidUsername
	}
	if err := ValidateEmail(a.Email); err != nil {
		return err
	}
	if a.RemindAfter < 0 || a.RemindEvery < 0 {
		return NewValidationError("remind_after", "must not be negative", nil)
	}
	return nil
}

// DisplayName is the name shown to other users.
func (a *Account) DisplayName() string {
	full := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if full == "" {
		return a.Username
	}
	return full
}

// CanReceiveEmail reports whether emails should be sent to the account.
func (a *Account) CanReceiveEmail() bool {
	return a.IsActive && !a.EmailBounced.Valid && a.Email != ""
}

// ValidateEmail checks an address using net/mail parsing rules.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.Index(email, "@"):], ".") {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces password length limits.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity holds the learning preferences attached to an account.
type Identity struct {
	AccountID          uuid.UUID     `json:"account_id" db:"account_id"`
	DefaultVersionSlug string        `json:"default_version" db:"default_version_slug"`
	TestingMethod      TestingMethod `json:"testing_method" db:"testing_method"`
	InterfaceLanguage  string        `json:"interface_language" db:"interface_language"`
	ReferredByID       uuid.NullUUID `json:"-" db:"referred_by_id"`
	TrackLearning      bool          `json:"track_learning" db:"track_learning"`
}

// NewIdentity returns the default preferences for a new account.
func NewIdentity(accountID uuid.UUID, defaultVersion string) *Identity {
	return &Identity{
		AccountID:          accountID,
		DefaultVersionSlug: defaultVersion,
		TestingMethod:      TestingMethodFullWords,
		InterfaceLanguage:  language.English.String(),
		TrackLearning:      true,
	}
}

// Validate checks identity preferences.
func (i *Identity) Validate() error {
	if !i.TestingMethod.Valid() {
		return NewValidationError("testing_method", "is not supported", nil)
	}
	if _, err := language.Parse(i.InterfaceLanguage); err != nil {
		return NewValidationError("interface_language", "is not a valid language tag", nil)
	}
	if i.DefaultVersionSlug == "" {
		return NewValidationError("default_version", "is required", nil)
	}
	return nil
}

// LanguageTag returns the parsed interface language, falling back to English.
func (i *Identity) LanguageTag() language.Tag {
	tag, err := language.Parse(i.InterfaceLanguage)
	if err != nil {
		return language.English
	}
	return tag
}

// ReminderCandidate is an account with tested verses, as considered by the
// reminder scheduler.
type ReminderCandidate struct {
	Account
	FirstDue time.Time `db:"first_due"`
	DueCount int       `db:"due_count"`
}

// ShouldRemind reports whether a reminder email is due at now: the first
// verse became due at least RemindAfter days ago and the previous reminder
// was sent at least RemindEvery days ago.
func (c *ReminderCandidate) ShouldRemind(now time.Time) bool {
	if c.RemindAfter <= 0 || !c.CanReceiveEmail() || c.FirstDue.IsZero() {
		return false
	}
	if now.Before(c.FirstDue.Add(days(c.RemindAfter))) {
		return false
	}
	if c.LastReminderSent.Valid && now.Before(c.LastReminderSent.Time.Add(days(c.RemindEvery))) {
		return false
	}
	return true
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
