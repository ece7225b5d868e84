package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitlistpro/backend/models"
)

type fakeFraudStore struct {
	referrerIP  *string
	hourCount   int64
	minuteCount int64
	flagRows    []models.FraudFlags
}

func (f *fakeFraudStore) ReferrerIP(waitlistID uuid.UUID, referralCode string) (*string, error) {
	return f.referrerIP, nil
}

func (f *fakeFraudStore) CountSignupsFromIP(waitlistID uuid.UUID, ip string, since time.Time) (int64, error) {
	if time.Since(since) < 2*time.Minute {
		return f.minuteCount, nil
	}
	return f.hourCount, nil
}

func (f *fakeFraudStore) FraudFlagRows(waitlistID uuid.UUID) ([]models.FraudFlags, error) {
	return f.flagRows, nil
}

func newTestFraudService(store *fakeFraudStore) *FraudService {
	return &FraudService{store: store, MaxPerHour: 10, MaxPerMinute: 3}
}

func strPtr(s string) *string { return &s }

func TestIsDisposableEmail(t *testing.T) {
	tests := []struct {
		email    string
		expected bool
	}{
		{"alice@mailinator.com", true},
		{"alice@MAILINATOR.COM", true},
		{"alice@yopmail.fr", true},
		{"alice@gmail.com", false},
		{"alice@company.io", false},
		{"no-at-sign", true}, // malformed counts as disposable
		{"alice@", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDisposableEmail(tt.email))
		})
	}
}

func TestHasSuspiciousPattern(t *testing.T) {
	tests := []struct {
		email    string
		expected bool
	}{
		{"1234567@gmail.com", true},
		{"test123@gmail.com", true},
		{"qwerty99@gmail.com", true},
		{"aaaaaa@gmail.com", true},
		{"aaaaa@gmail.com", true},     // run of exactly five
		{"aaaa1@gmail.com", false},    // four repeats is fine
		{"x11111y@gmail.com", true},   // run anywhere in the local part
		{"aabbaabb@gmail.com", false}, // alternating pairs never run
		{"@gmail.com", true},          // empty local part
		{"alice.smith@gmail.com", false},
		{"bob+waitlist@company.io", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasSuspiciousPattern(tt.email))
		})
	}
}

func TestScoreFlags(t *testing.T) {
	tests := []struct {
		name           string
		flags          models.FraudFlags
		expectedScore  int
		expectedValid  bool
		expectedReason string
	}{
		{
			name:          "clean signup scores zero and is accepted",
			flags:         models.FraudFlags{},
			expectedScore: 0,
			expectedValid: true,
		},
		{
			name:           "disposable email alone hits the reject threshold",
			flags:          models.FraudFlags{DisposableEmail: true},
			expectedScore:  40,
			expectedValid:  false,
			expectedReason: "Disposable email addresses are not allowed",
		},
		{
			name:          "suspicious pattern alone stays under the threshold",
			flags:         models.FraudFlags{SuspiciousPattern: true},
			expectedScore: 20,
			expectedValid: true,
		},
		{
			name:          "same-IP referral alone stays under the threshold",
			flags:         models.FraudFlags{SameIpReferral: true},
			expectedScore: 30,
			expectedValid: true,
		},
		{
			name:           "rate limit plus suspicious pattern rejects on rate limit first",
			flags:          models.FraudFlags{IpRateLimit: true, SuspiciousPattern: true},
			expectedScore:  45,
			expectedValid:  false,
			expectedReason: "Too many signups from this IP address",
		},
		{
			name:           "same-IP plus rapid signup rejects on self-referral first",
			flags:          models.FraudFlags{SameIpReferral: true, RapidSignup: true},
			expectedScore:  45,
			expectedValid:  false,
			expectedReason: "Self-referral detected",
		},
		{
			name:           "every flag sums to 130, no clamp",
			flags:          models.FraudFlags{DisposableEmail: true, SuspiciousPattern: true, SameIpReferral: true, IpRateLimit: true, RapidSignup: true},
			expectedScore:  130,
			expectedValid:  false,
			expectedReason: "Disposable email addresses are not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scoreFlags(tt.flags)

			assert.Equal(t, tt.expectedScore, result.Score)
			assert.Equal(t, tt.expectedValid, result.IsValid)
			assert.Equal(t, tt.expectedReason, result.Reason)
			assert.Equal(t, tt.flags, result.Flags)
		})
	}
}

func TestRunChecks_SameIpReferral(t *testing.T) {
	waitlistID := uuid.New()

	tests := []struct {
		name         string
		referrerIP   *string
		ip           *string
		referralCode *string
		expected     bool
	}{
		{
			name:         "matching IP flags self-referral",
			referrerIP:   strPtr("10.0.0.1"),
			ip:           strPtr("10.0.0.1"),
			referralCode: strPtr("ABCD1234"),
			expected:     true,
		},
		{
			name:         "different IP does not flag",
			referrerIP:   strPtr("10.0.0.2"),
			ip:           strPtr("10.0.0.1"),
			referralCode: strPtr("ABCD1234"),
			expected:     false,
		},
		{
			name:         "no matching referrer signup",
			referrerIP:   nil,
			ip:           strPtr("10.0.0.1"),
			referralCode: strPtr("STALE999"),
			expected:     false,
		},
		{
			name:         "referrer stored with null IP never matches",
			referrerIP:   nil,
			ip:           strPtr("10.0.0.1"),
			referralCode: strPtr("ABCD1234"),
			expected:     false,
		},
		{
			name:         "no referral code supplied",
			referrerIP:   strPtr("10.0.0.1"),
			ip:           strPtr("10.0.0.1"),
			referralCode: nil,
			expected:     false,
		},
		{
			name:         "null incoming IP never matches",
			referrerIP:   strPtr("10.0.0.1"),
			ip:           nil,
			referralCode: strPtr("ABCD1234"),
			expected:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestFraudService(&fakeFraudStore{referrerIP: tt.referrerIP})

			result, err := svc.RunChecks(waitlistID, "alice@gmail.com", tt.ip, tt.referralCode)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Flags.SameIpReferral)
		})
	}
}

func TestRunChecks_RateLimits(t *testing.T) {
	waitlistID := uuid.New()
	ip := strPtr("10.0.0.1")

	tests := []struct {
		name              string
		hourCount         int64
		minuteCount       int64
		ip                *string
		expectedRateLimit bool
		expectedRapid     bool
	}{
		{name: "quiet IP", hourCount: 1, minuteCount: 0, ip: ip},
		{name: "nine in the hour stays under", hourCount: 9, minuteCount: 0, ip: ip},
		{name: "ten in the hour trips the hourly limit", hourCount: 10, minuteCount: 0, ip: ip, expectedRateLimit: true},
		{name: "three in the minute trips rapid signup", hourCount: 3, minuteCount: 3, ip: ip, expectedRapid: true},
		{name: "null IP trips nothing", hourCount: 50, minuteCount: 50, ip: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestFraudService(&fakeFraudStore{hourCount: tt.hourCount, minuteCount: tt.minuteCount})

			result, err := svc.RunChecks(waitlistID, "alice@gmail.com", tt.ip, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedRateLimit, result.Flags.IpRateLimit)
			assert.Equal(t, tt.expectedRapid, result.Flags.RapidSignup)
		})
	}
}

func TestRunChecks_CleanSignupAccepted(t *testing.T) {
	svc := newTestFraudService(&fakeFraudStore{})

	result, err := svc.RunChecks(uuid.New(), "alice@gmail.com", strPtr("10.0.0.1"), nil)

	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Reason)
}

func TestFraudStats(t *testing.T) {
	t.Run("empty waitlist reports a perfect clean rate", func(t *testing.T) {
		svc := newTestFraudService(&fakeFraudStore{})

		stats, err := svc.Stats(uuid.New())

		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.Total)
		assert.Equal(t, float64(100), stats.CleanRate)
	})

	t.Run("counts each flag and derives the clean rate", func(t *testing.T) {
		svc := newTestFraudService(&fakeFraudStore{flagRows: []models.FraudFlags{
			{},
			{},
			{DisposableEmail: true},
			{SameIpReferral: true, SuspiciousPattern: true},
			{SuspiciousPattern: true},
		}})

		stats, err := svc.Stats(uuid.New())

		require.NoError(t, err)
		assert.Equal(t, int64(5), stats.Total)
		assert.Equal(t, int64(1), stats.Flagged.DisposableEmail)
		assert.Equal(t, int64(1), stats.Flagged.SameIpReferral)
		assert.Equal(t, int64(2), stats.Flagged.SuspiciousPattern)
		// (5 - 1 disposable - 1 same-IP) / 5
		assert.InDelta(t, 60.0, stats.CleanRate, 0.001)
	})
}
