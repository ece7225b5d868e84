package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitlistpro/backend/models"
)

func TestNextPosition(t *testing.T) {
	assert.Equal(t, 1, nextPosition(0)) // first signup takes spot 1

	prev := 0
	for count := int64(0); count < 5; count++ {
		position := nextPosition(count)
		assert.Greater(t, position, prev)
		prev = position
	}
}

func TestVerificationReply_FirstVerification(t *testing.T) {
	signup := &models.Signup{Position: 7, ReferralCode: "ABCD1234"}

	reply, alreadyVerified := verificationReply(signup)

	require.False(t, alreadyVerified)
	assert.Equal(t, true, reply["success"])
	assert.Equal(t, 7, reply["position"])
	assert.Equal(t, "ABCD1234", reply["referralCode"])
	assert.NotContains(t, reply, "alreadyVerified")
}

func TestVerificationReply_RepeatVerificationShortCircuits(t *testing.T) {
	signup := &models.Signup{Position: 7, ReferralCode: "ABCD1234", Verified: true}

	reply, alreadyVerified := verificationReply(signup)

	// A second click on the link must not record new events; the caller
	// returns this reply without touching the database.
	require.True(t, alreadyVerified)
	assert.Equal(t, true, reply["alreadyVerified"])
	assert.Equal(t, 7, reply["position"])
	assert.Equal(t, "ABCD1234", reply["referralCode"])
}
