package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitlistpro/backend/models"
)

func TestKFactorOf(t *testing.T) {
	tests := []struct {
		name              string
		verifiedReferrals int64
		verifiedSignups   int64
		expected          float64
	}{
		{name: "no verified signups yields zero", verifiedReferrals: 10, verifiedSignups: 0, expected: 0},
		{name: "ten referrals over four verified", verifiedReferrals: 10, verifiedSignups: 4, expected: 2.5},
		{name: "sub-viral waitlist", verifiedReferrals: 2, verifiedSignups: 7, expected: 0.29},
		{name: "rounds to two decimals", verifiedReferrals: 1, verifiedSignups: 3, expected: 0.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, kFactorOf(tt.verifiedReferrals, tt.verifiedSignups))
		})
	}
}

func TestBuildAdvocates(t *testing.T) {
	t.Run("contribution is a share of the returned set", func(t *testing.T) {
		rows := []models.Signup{
			{Email: "a@x.com", ReferralCount: 10},
			{Email: "b@x.com", ReferralCount: 6},
			{Email: "c@x.com", ReferralCount: 4},
		}

		advocates := buildAdvocates(rows)

		require.Len(t, advocates, 3)
		assert.Equal(t, 50.0, advocates[0].ContributionPercentage)
		assert.Equal(t, 30.0, advocates[1].ContributionPercentage)
		assert.Equal(t, 20.0, advocates[2].ContributionPercentage)
	})

	t.Run("uneven split rounds to one decimal", func(t *testing.T) {
		rows := []models.Signup{
			{Email: "a@x.com", ReferralCount: 2},
			{Email: "b@x.com", ReferralCount: 1},
		}

		advocates := buildAdvocates(rows)

		require.Len(t, advocates, 2)
		assert.Equal(t, 66.7, advocates[0].ContributionPercentage)
		assert.Equal(t, 33.3, advocates[1].ContributionPercentage)
	})

	t.Run("empty set", func(t *testing.T) {
		assert.Empty(t, buildAdvocates(nil))
	})
}

func TestGroupDailyTrend(t *testing.T) {
	day1 := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	day5 := time.Date(2026, 8, 5, 23, 15, 0, 0, time.UTC)
	ref := "ABCD1234"

	t.Run("sparse series with organic/referred split", func(t *testing.T) {
		rows := []models.Signup{
			{CreatedAt: day1},
			{CreatedAt: day1.Add(2 * time.Hour), ReferredBy: &ref},
			{CreatedAt: day5, ReferredBy: &ref},
		}

		points := groupDailyTrend(rows)

		require.Len(t, points, 2) // days with zero signups are omitted
		assert.Equal(t, DailyTrendPoint{Date: "2026-08-01", Total: 2, Organic: 1, Referred: 1}, points[0])
		assert.Equal(t, DailyTrendPoint{Date: "2026-08-05", Total: 1, Organic: 0, Referred: 1}, points[1])
	})

	t.Run("buckets by UTC calendar date", func(t *testing.T) {
		// 23:30 UTC-5 is already the next day in UTC
		est := time.FixedZone("EST", -5*3600)
		rows := []models.Signup{
			{CreatedAt: time.Date(2026, 8, 1, 23, 30, 0, 0, est)},
		}

		points := groupDailyTrend(rows)

		require.Len(t, points, 1)
		assert.Equal(t, "2026-08-02", points[0].Date)
	})

	t.Run("no signups yields an empty series", func(t *testing.T) {
		assert.Empty(t, groupDailyTrend(nil))
	})
}

func TestAverageVerifyMinutes(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("nil when nothing verified", func(t *testing.T) {
		assert.Nil(t, averageVerifyMinutes(nil))
	})

	t.Run("mean latency in minutes rounded to one decimal", func(t *testing.T) {
		tenMin := created.Add(10 * time.Minute)
		fiveMin := created.Add(5 * time.Minute)
		rows := []models.Signup{
			{CreatedAt: created, VerifiedAt: &tenMin},
			{CreatedAt: created, VerifiedAt: &fiveMin},
		}

		avg := averageVerifyMinutes(rows)

		require.NotNil(t, avg)
		assert.Equal(t, 7.5, *avg)
	})

	t.Run("sub-minute latency", func(t *testing.T) {
		soon := created.Add(90 * time.Second)
		rows := []models.Signup{{CreatedAt: created, VerifiedAt: &soon}}

		avg := averageVerifyMinutes(rows)

		require.NotNil(t, avg)
		assert.Equal(t, 1.5, *avg)
	})
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 2.35, round2(2.346))
	assert.Equal(t, 0.33, round2(1.0/3.0))
	assert.Equal(t, 66.7, round1(200.0/3.0))
	assert.Equal(t, 0.0, round1(0))
}
