package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/waitlistpro/backend/models"
	"gorm.io/gorm"
)

// Fraud score weights. The sum is deliberately not clamped to 100; a signup
// tripping every flag scores 130.
const (
	weightDisposableEmail   = 40
	weightSuspiciousPattern = 20
	weightSameIpReferral    = 30
	weightIpRateLimit       = 25
	weightRapidSignup       = 15

	rejectScoreThreshold = 40

	defaultMaxSignupsPerHour   = 10
	defaultMaxSignupsPerMinute = 3
)

// FraudCheckResult is the outcome of evaluating one signup attempt. The
// checks are read-only; the caller persists Flags on the new signup row.
type FraudCheckResult struct {
	IsValid bool              `json:"isValid"`
	Flags   models.FraudFlags `json:"flags"`
	Score   int               `json:"score"`
	Reason  string            `json:"reason,omitempty"`
}

// FraudStats aggregates the flag sets stored on a waitlist's signups.
type FraudStats struct {
	Total   int64 `json:"total"`
	Flagged struct {
		DisposableEmail   int64 `json:"disposableEmail"`
		SameIpReferral    int64 `json:"sameIpReferral"`
		SuspiciousPattern int64 `json:"suspiciousPattern"`
	} `json:"flagged"`
	CleanRate float64 `json:"cleanRate"`
}

type fraudStore interface {
	// ReferrerIP returns the stored IP of the signup holding referralCode in
	// the waitlist, or nil when no such signup exists or its IP is null.
	ReferrerIP(waitlistID uuid.UUID, referralCode string) (*string, error)
	CountSignupsFromIP(waitlistID uuid.UUID, ip string, since time.Time) (int64, error)
	FraudFlagRows(waitlistID uuid.UUID) ([]models.FraudFlags, error)
}

type FraudService struct {
	store fraudStore

	MaxPerHour   int
	MaxPerMinute int
}

func NewFraudService(db *gorm.DB) *FraudService {
	return &FraudService{
		store:        &gormFraudStore{db: db},
		MaxPerHour:   defaultMaxSignupsPerHour,
		MaxPerMinute: defaultMaxSignupsPerMinute,
	}
}

// RunChecks evaluates a signup attempt against the block lists and the
// waitlist's recent activity. ipAddress and referralCode may be nil.
func (s *FraudService) RunChecks(waitlistID uuid.UUID, email string, ipAddress, referralCode *string) (*FraudCheckResult, error) {
	flags := models.FraudFlags{
		DisposableEmail:   IsDisposableEmail(email),
		SuspiciousPattern: HasSuspiciousPattern(email),
	}

	var err error
	flags.SameIpReferral, err = s.isSameIpReferral(waitlistID, referralCode, ipAddress)
	if err != nil {
		return nil, err
	}

	flags.IpRateLimit, err = s.overSignupLimit(waitlistID, ipAddress, time.Hour, s.MaxPerHour)
	if err != nil {
		return nil, err
	}

	flags.RapidSignup, err = s.overSignupLimit(waitlistID, ipAddress, time.Minute, s.MaxPerMinute)
	if err != nil {
		return nil, err
	}

	result := scoreFlags(flags)
	return &result, nil
}

// IsDisposableEmail reports whether the address belongs to a known
// throwaway-mailbox domain. A malformed address with no domain counts as
// disposable.
func IsDisposableEmail(email string) bool {
	_, domain, found := strings.Cut(email, "@")
	if !found || domain == "" {
		return true
	}
	_, blocked := disposableDomains[strings.ToLower(domain)]
	return blocked
}

// HasSuspiciousPattern reports whether the local part looks machine
// generated. An empty local part is always suspicious.
func HasSuspiciousPattern(email string) bool {
	localPart, _, _ := strings.Cut(strings.ToLower(email), "@")
	if localPart == "" {
		return true
	}
	if hasRepeatedRun(localPart) {
		return true
	}
	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(localPart) {
			return true
		}
	}
	return false
}

// isSameIpReferral flags self-referral: the signup claiming a referral code
// arrives from exactly the IP the referrer signed up with.
func (s *FraudService) isSameIpReferral(waitlistID uuid.UUID, referralCode, ipAddress *string) (bool, error) {
	if referralCode == nil || *referralCode == "" || ipAddress == nil || *ipAddress == "" {
		return false, nil
	}

	referrerIP, err := s.store.ReferrerIP(waitlistID, *referralCode)
	if err != nil {
		return false, err
	}
	if referrerIP == nil {
		return false, nil
	}
	return *referrerIP == *ipAddress, nil
}

func (s *FraudService) overSignupLimit(waitlistID uuid.UUID, ipAddress *string, window time.Duration, limit int) (bool, error) {
	if ipAddress == nil || *ipAddress == "" {
		return false, nil
	}

	recent, err := s.store.CountSignupsFromIP(waitlistID, *ipAddress, time.Now().Add(-window))
	if err != nil {
		return false, err
	}
	return recent >= int64(limit), nil
}

// scoreFlags turns the flag set into the weighted score, the accept/reject
// decision and the first-match rejection reason.
func scoreFlags(flags models.FraudFlags) FraudCheckResult {
	score := 0
	if flags.DisposableEmail {
		score += weightDisposableEmail
	}
	if flags.SuspiciousPattern {
		score += weightSuspiciousPattern
	}
	if flags.SameIpReferral {
		score += weightSameIpReferral
	}
	if flags.IpRateLimit {
		score += weightIpRateLimit
	}
	if flags.RapidSignup {
		score += weightRapidSignup
	}

	result := FraudCheckResult{
		IsValid: score < rejectScoreThreshold,
		Flags:   flags,
		Score:   score,
	}

	if !result.IsValid {
		switch {
		case flags.DisposableEmail:
			result.Reason = "Disposable email addresses are not allowed"
		case flags.IpRateLimit:
			result.Reason = "Too many signups from this IP address"
		case flags.SameIpReferral:
			result.Reason = "Self-referral detected"
		case flags.RapidSignup:
			result.Reason = "Please wait before signing up again"
		case flags.SuspiciousPattern:
			result.Reason = "Please use a valid email address"
		}
	}

	return result
}

// Stats summarizes the fraud flags captured across a waitlist's signups.
func (s *FraudService) Stats(waitlistID uuid.UUID) (*FraudStats, error) {
	rows, err := s.store.FraudFlagRows(waitlistID)
	if err != nil {
		return nil, err
	}

	stats := FraudStats{Total: int64(len(rows)), CleanRate: 100}
	for _, flags := range rows {
		if flags.DisposableEmail {
			stats.Flagged.DisposableEmail++
		}
		if flags.SameIpReferral {
			stats.Flagged.SameIpReferral++
		}
		if flags.SuspiciousPattern {
			stats.Flagged.SuspiciousPattern++
		}
	}

	if stats.Total > 0 {
		clean := stats.Total - stats.Flagged.DisposableEmail - stats.Flagged.SameIpReferral
		stats.CleanRate = float64(clean) / float64(stats.Total) * 100
	}
	return &stats, nil
}

type gormFraudStore struct {
	db *gorm.DB
}

func (g *gormFraudStore) ReferrerIP(waitlistID uuid.UUID, referralCode string) (*string, error) {
	var signup models.Signup
	err := g.db.Select("ip_address").
		Where("waitlist_id = ? AND referral_code = ?", waitlistID, referralCode).
		First(&signup).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return signup.IpAddress, nil
}

func (g *gormFraudStore) CountSignupsFromIP(waitlistID uuid.UUID, ip string, since time.Time) (int64, error) {
	var count int64
	err := g.db.Model(&models.Signup{}).
		Where("waitlist_id = ? AND ip_address = ? AND created_at >= ?", waitlistID, ip, since).
		Count(&count).Error
	return count, err
}

func (g *gormFraudStore) FraudFlagRows(waitlistID uuid.UUID) ([]models.FraudFlags, error) {
	var signups []models.Signup
	err := g.db.Select("fraud_flags").
		Where("waitlist_id = ?", waitlistID).
		Find(&signups).Error
	if err != nil {
		return nil, err
	}

	rows := make([]models.FraudFlags, 0, len(signups))
	for _, s := range signups {
		rows = append(rows, s.FraudFlags)
	}
	return rows, nil
}
