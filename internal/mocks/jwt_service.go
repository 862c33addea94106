package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/service/auth"
)

// MockJWTService hands out fixed tokens and claims. Issued records the
// account ids tokens were generated for.
type MockJWTService struct {
	Token        string
	RefreshToken string
	Err          error

	Claims      *auth.Claims
	ValidateErr error

	Issued []uuid.UUID
}

var _ auth.JWTService = (*MockJWTService)(nil)

func (m *MockJWTService) GenerateToken(_ context.Context, accountID uuid.UUID) (string, error) {
	m.Issued = append(m.Issued, accountID)
	return m.Token, m.Err
}

func (m *MockJWTService) GenerateRefreshToken(_ context.Context, accountID uuid.UUID) (string, error) {
	return m.RefreshToken, m.Err
}

func (m *MockJWTService) ValidateToken(context.Context, string) (*auth.Claims, error) {
	return m.Claims, m.ValidateErr
}

func (m *MockJWTService) ValidateRefreshToken(context.Context, string) (*auth.Claims, error) {
	return m.Claims, m.ValidateErr
}
