package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountCents(t *testing.T) {
	t.Parallel()

	valid := map[string]int64{"10": 1000, "10.5": 1050, "0.99": 99, " 25.00 ": 2500}
	for in, want := range valid {
		got, err := ParseAmountCents(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "1.234", "-5", ".5"} {
		_, err := ParseAmountCents(in)
		assert.ErrorIs(t, err, ErrValidation, in)
	}
}

func TestParseDonationCustom(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	got, err := ParseDonationCustom(DonationCustom(id))
	require.NoError(t, err)
	assert.Equal(t, uuid.NullUUID{UUID: id, Valid: true}, got)

	got, err = ParseDonationCustom("")
	require.NoError(t, err)
	assert.False(t, got.Valid)

	_, err = ParseDonationCustom("account=nope")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestDonationDrive(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	d := &DonationDrive{
		Start:             now.Add(-24 * time.Hour),
		Finish:            now.Add(24 * time.Hour),
		Active:            true,
		TargetCents:       10000,
		HideIfDonatedDays: 30,
	}

	assert.True(t, d.IsCurrent(now))
	assert.False(t, d.IsCurrent(d.Finish))
	assert.True(t, d.HiddenFor(now.Add(-10*24*time.Hour), now))
	assert.False(t, d.HiddenFor(now.Add(-40*24*time.Hour), now))
	assert.False(t, d.HiddenFor(time.Time{}, now))
	assert.InDelta(t, 0.25, NewDriveStatus(d, 2500).Progress, 1e-9)
}
