package handlers

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitlistpro/backend/models"
)

func TestSignupsCSV(t *testing.T) {
	signedUp := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	verifiedAt := signedUp.Add(30 * time.Minute)
	referredBy := "REF00001"

	signups := []models.Signup{
		{
			Email:        "alice@example.com",
			Position:     1,
			Verified:     true,
			ReferralCode: "ABCD1234",
			CreatedAt:    signedUp,
			VerifiedAt:   &verifiedAt,
		},
		{
			// RFC 5321 allows commas inside a quoted local part.
			Email:         `"last, first"@example.com`,
			Position:      2,
			ReferralCode:  "EFGH5678",
			ReferralCount: 3,
			ReferredBy:    &referredBy,
			CreatedAt:     signedUp,
		},
	}

	records, err := csv.NewReader(strings.NewReader(signupsCSV(signups))).ReadAll()

	require.NoError(t, err)
	require.Len(t, records, 3) // header + two rows
	assert.Equal(t, "Email", records[0][0])

	assert.Equal(t, "alice@example.com", records[1][0])
	assert.Equal(t, "Yes", records[1][2])
	assert.Equal(t, "2026-08-01T10:30:00Z", records[1][8])

	// The comma-bearing address survives as a single field.
	assert.Equal(t, `"last, first"@example.com`, records[2][0])
	assert.Len(t, records[2], len(records[0]))
	assert.Equal(t, "3", records[2][4])
	assert.Equal(t, "REF00001", records[2][5])
	assert.Equal(t, "No", records[2][2])
}

func TestSignupsCSV_EmptyRoster(t *testing.T) {
	records, err := csv.NewReader(strings.NewReader(signupsCSV(nil))).ReadAll()

	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}
