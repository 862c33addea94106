package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotOwned,
		ErrForbidden,
		ErrNotMember,
		ErrInvalidCredentials,
		ErrAccountInactive,
		ErrCommentingDisabled,
		ErrCreatorCannotLeave,
		ErrNotInvited,
		ErrNoVerses,
		ErrIPNNotVerified,
		ErrIPNVerifyFailed,
	}
	for i, a := range sentinels {
		assert.NotEmpty(t, a.Error())
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestSentinelErrors_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("failed to update verse set: %w", ErrNotOwned)
	assert.ErrorIs(t, err, ErrNotOwned)
	assert.NotErrorIs(t, err, ErrForbidden)
}
