package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username   string `json:"username"    validate:"required,min=1,max=40"`
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required,min=8,max=72"`
	FirstName  string `json:"first_name"  validate:"max=50"`
	LastName   string `json:"last_name"   validate:"max=50"`
	ReferredBy string `json:"referred_by"`
}

// LoginRequest is the body of POST /api/auth/login. Login is a username or email.
type LoginRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the body of POST /api/auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	AccountID    uuid.UUID `json:"account_id,omitempty"`
	Username     string    `json:"username,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// UpdateProfileRequest is the body of PUT /api/account. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	FirstName         *string               `json:"first_name"         validate:"omitempty,max=50"`
	LastName          *string               `json:"last_name"          validate:"omitempty,max=50"`
	Email             *string               `json:"email"              validate:"omitempty,email"`
	RemindAfter       *int                  `json:"remind_after"       validate:"omitempty,gte=0,lte=365"`
	RemindEvery       *int                  `json:"remind_every"       validate:"omitempty,gte=0,lte=365"`
	EnableCommenting  *bool                 `json:"enable_commenting"`
	DefaultVersion    *string               `json:"default_version"`
	TestingMethod     *domain.TestingMethod `json:"testing_method"     validate:"omitempty,oneof=full_words first_letter on_screen"`
	InterfaceLanguage *string               `json:"interface_language" validate:"omitempty,max=10"`
	TrackLearning     *bool                 `json:"track_learning"`
}

// ChangePasswordRequest is the body of POST /api/account/password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// VerseSetRequest is the body for creating and updating verse sets.
// Selections list References; passages give a single Passage range.
type VerseSetRequest struct {
	Name        string         `json:"name"        validate:"required,max=255"`
	Description string         `json:"description"`
	SetType     domain.SetType `json:"set_type"    validate:"required,oneof=selection passage"`
	Public      bool           `json:"public"`
	References  []string       `json:"references"`
	Passage     string         `json:"passage"`
}

// LearnRequest is the optional body of POST /api/versesets/{slug}/learn.
type LearnRequest struct {
	Version string `json:"version"`
}

// LearnResponse reports how many verses were added to the queue.
type LearnResponse struct {
	Added int `json:"added"`
}

// AddVerseRequest is the body of POST /api/learning/verses.
type AddVerseRequest struct {
	Reference string `json:"reference" validate:"required"`
	Version   string `json:"version"`
}

// TestRequest is the body of POST /api/learning/verses/{id}/test.
type TestRequest struct {
	Accuracy *float64 `json:"accuracy" validate:"required,gte=0,lte=1"`
}

// CommentRequest is the body for new comments.
type CommentRequest struct {
	Message string `json:"message" validate:"required,max=10000"`
}

// GroupRequest is the body for creating and updating groups.
type GroupRequest struct {
	Name        string `json:"name"        validate:"required,max=255"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	Open        bool   `json:"open"`
}

// InvitationRequest is the body of POST /api/groups/{slug}/invitations.
type InvitationRequest struct {
	Username string `json:"username" validate:"required"`
}

// PageRequest is the body of POST /api/admin/pages.
type PageRequest struct {
	ParentID     *uuid.UUID `json:"parent_id"`
	Title        string     `json:"title"         validate:"required,max=255"`
	Slug         string     `json:"slug"          validate:"max=255"`
	Content      string     `json:"content"`
	IsPublic     bool       `json:"is_public"`
	InNavigation bool       `json:"in_navigation"`
	Order        int        `json:"order"`
}

// PageUpdateRequest is the body of PUT /api/admin/pages/{id}.
type PageUpdateRequest struct {
	Title        *string `json:"title"         validate:"omitempty,max=255"`
	Slug         *string `json:"slug"          validate:"omitempty,max=255"`
	Content      *string `json:"content"`
	IsPublic     *bool   `json:"is_public"`
	InNavigation *bool   `json:"in_navigation"`
}

// MovePageRequest is the body of POST /api/admin/pages/{id}/move. A nil
// parent makes the page a root.
type MovePageRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
	Order    int        `json:"order"`
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
