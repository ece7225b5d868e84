package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitlistpro/backend/models"
)

func rewardLadder(thresholds ...int) []models.Reward {
	rewards := make([]models.Reward, 0, len(thresholds))
	for _, th := range thresholds {
		rewards = append(rewards, models.Reward{Threshold: th, Title: "Reward"})
	}
	return rewards
}

func TestNewlyUnlockedReward(t *testing.T) {
	tests := []struct {
		name              string
		thresholds        []int
		newCount          int
		expectedThreshold int // 0 means no unlock
	}{
		{
			name:              "count crossing a threshold unlocks it",
			thresholds:        []int{3, 5, 10},
			newCount:          3,
			expectedThreshold: 3,
		},
		{
			name:       "next increment past the threshold does not re-unlock",
			thresholds: []int{3, 5, 10},
			newCount:   4,
		},
		{
			name:              "mid-ladder boundary",
			thresholds:        []int{3, 5, 10},
			newCount:          5,
			expectedThreshold: 5,
		},
		{
			name:       "count below every threshold",
			thresholds: []int{3, 5, 10},
			newCount:   1,
		},
		{
			name:       "count far past the ladder",
			thresholds: []int{3, 5, 10},
			newCount:   11,
		},
		{
			name:     "no rewards configured",
			newCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unlocked := newlyUnlockedReward(rewardLadder(tt.thresholds...), tt.newCount)

			if tt.expectedThreshold == 0 {
				assert.Nil(t, unlocked)
				return
			}
			require.NotNil(t, unlocked)
			assert.Equal(t, tt.expectedThreshold, unlocked.Threshold)
		})
	}
}

func TestNewlyUnlockedReward_UnlocksExactlyOnce(t *testing.T) {
	rewards := rewardLadder(3)

	// Referrer moves 2 -> 3: unlocked.
	require.NotNil(t, newlyUnlockedReward(rewards, 3))
	// Next verification moves 3 -> 4: nothing at 4, no repeat.
	assert.Nil(t, newlyUnlockedReward(rewards, 4))
}
