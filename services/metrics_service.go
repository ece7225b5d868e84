package services

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/waitlistpro/backend/models"
	"gorm.io/gorm"
)

// ViralMetrics is the dashboard snapshot for one waitlist. Every number is
// recomputed from signup rows on read; nothing here is cached or derived
// from a side table.
type ViralMetrics struct {
	KFactor      float64 `json:"kFactor"`
	KFactorTrend string  `json:"kFactorTrend"`

	TotalSignups        int64   `json:"totalSignups"`
	VerifiedSignups     int64   `json:"verifiedSignups"`
	TotalReferrals      int64   `json:"totalReferrals"`
	AvgReferralsPerUser float64 `json:"avgReferralsPerUser"`

	TopReferrers []TopReferrer `json:"topReferrers"`

	OrganicSignups    int64   `json:"organicSignups"`
	ReferredSignups   int64   `json:"referredSignups"`
	OrganicPercentage float64 `json:"organicPercentage"`

	SignupsLast24h int64 `json:"signupsLast24h"`
	SignupsLast7d  int64 `json:"signupsLast7d"`
	SignupsLast30d int64 `json:"signupsLast30d"`

	VerificationRate float64  `json:"verificationRate"`
	AvgTimeToVerify  *float64 `json:"avgTimeToVerify"` // minutes; nil when nothing verified
}

type TopReferrer struct {
	Email           string  `json:"email"`
	ReferralCount   int     `json:"referralCount"`
	EngagementScore float64 `json:"engagementScore"`
}

type SuperAdvocate struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	ReferralCount   int       `json:"referralCount"`
	EngagementScore float64   `json:"engagementScore"`
	EmailOpens      int       `json:"emailOpens"`
	LinkClicks      int       `json:"linkClicks"`
	Verified        bool      `json:"verified"`
	CreatedAt       time.Time `json:"createdAt"`

	// ContributionPercentage is this advocate's share of the referrals made
	// by the returned set, not of the waitlist-wide total.
	ContributionPercentage float64 `json:"contributionPercentage"`
}

type DailyTrendPoint struct {
	Date     string `json:"date"`
	Total    int    `json:"total"`
	Organic  int    `json:"organic"`
	Referred int    `json:"referred"`
}

type MetricsService struct {
	db *gorm.DB
}

func NewMetricsService(db *gorm.DB) *MetricsService {
	return &MetricsService{db: db}
}

// ViralMetrics aggregates the signup rows into the K-factor snapshot.
func (s *MetricsService) ViralMetrics(waitlistID uuid.UUID) (*ViralMetrics, error) {
	now := time.Now()

	totalSignups, err := s.countSignups(waitlistID, "")
	if err != nil {
		return nil, err
	}
	verifiedSignups, err := s.countSignups(waitlistID, "verified = true")
	if err != nil {
		return nil, err
	}
	organicSignups, err := s.countSignups(waitlistID, "referred_by IS NULL")
	if err != nil {
		return nil, err
	}
	referredSignups, err := s.countSignups(waitlistID, "referred_by IS NOT NULL")
	if err != nil {
		return nil, err
	}

	totalReferrals, err := s.sumReferralCounts(waitlistID, false)
	if err != nil {
		return nil, err
	}
	verifiedReferrals, err := s.sumReferralCounts(waitlistID, true)
	if err != nil {
		return nil, err
	}

	last24h, err := s.countSignupsSince(waitlistID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	last7d, err := s.countSignupsSince(waitlistID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	last30d, err := s.countSignupsSince(waitlistID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	var topRows []models.Signup
	err = s.db.Where("waitlist_id = ? AND referral_count > 0", waitlistID).
		Order("referral_count DESC").
		Limit(10).
		Find(&topRows).Error
	if err != nil {
		return nil, err
	}
	topReferrers := make([]TopReferrer, 0, len(topRows))
	for _, row := range topRows {
		topReferrers = append(topReferrers, TopReferrer{
			Email:           row.Email,
			ReferralCount:   row.ReferralCount,
			EngagementScore: row.EngagementScore,
		})
	}

	var verifiedRows []models.Signup
	err = s.db.Select("created_at", "verified_at").
		Where("waitlist_id = ? AND verified = true AND verified_at IS NOT NULL", waitlistID).
		Find(&verifiedRows).Error
	if err != nil {
		return nil, err
	}

	// K-factor divides verified signups' referrals by verified signups.
	// avgReferralsPerUser divides all referrals by all signups; the two
	// denominators differ on purpose.
	kFactor := kFactorOf(verifiedReferrals, verifiedSignups)
	avgReferralsPerUser := 0.0
	if totalSignups > 0 {
		avgReferralsPerUser = float64(totalReferrals) / float64(totalSignups)
	}
	organicPercentage := 0.0
	verificationRate := 0.0
	if totalSignups > 0 {
		organicPercentage = float64(organicSignups) / float64(totalSignups) * 100
		verificationRate = float64(verifiedSignups) / float64(totalSignups) * 100
	}

	return &ViralMetrics{
		KFactor: kFactor,
		// A real trend needs a historical baseline; "stable" is the default
		// until one exists.
		KFactorTrend:        "stable",
		TotalSignups:        totalSignups,
		VerifiedSignups:     verifiedSignups,
		TotalReferrals:      totalReferrals,
		AvgReferralsPerUser: round2(avgReferralsPerUser),
		TopReferrers:        topReferrers,
		OrganicSignups:      organicSignups,
		ReferredSignups:     referredSignups,
		OrganicPercentage:   round1(organicPercentage),
		SignupsLast24h:      last24h,
		SignupsLast7d:       last7d,
		SignupsLast30d:      last30d,
		VerificationRate:    round1(verificationRate),
		AvgTimeToVerify:     averageVerifyMinutes(verifiedRows),
	}, nil
}

// SuperAdvocates ranks the waitlist's top referrers with engagement detail
// and each one's share of the returned set's referrals.
func (s *MetricsService) SuperAdvocates(waitlistID uuid.UUID, limit int) ([]SuperAdvocate, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []models.Signup
	err := s.db.Where("waitlist_id = ? AND referral_count > 0", waitlistID).
		Order("referral_count DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return buildAdvocates(rows), nil
}

// DailyGrowthTrend buckets signups by UTC calendar date over the trailing
// day window. Days with zero signups are omitted.
func (s *MetricsService) DailyGrowthTrend(waitlistID uuid.UUID, days int) ([]DailyTrendPoint, error) {
	if days <= 0 {
		days = 30
	}

	start := time.Now().AddDate(0, 0, -days)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	var rows []models.Signup
	err := s.db.Select("created_at", "referred_by").
		Where("waitlist_id = ? AND created_at >= ?", waitlistID, start).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return groupDailyTrend(rows), nil
}

func (s *MetricsService) countSignups(waitlistID uuid.UUID, extra string) (int64, error) {
	var count int64
	q := s.db.Model(&models.Signup{}).Where("waitlist_id = ?", waitlistID)
	if extra != "" {
		q = q.Where(extra)
	}
	err := q.Count(&count).Error
	return count, err
}

func (s *MetricsService) countSignupsSince(waitlistID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.Signup{}).
		Where("waitlist_id = ? AND created_at >= ?", waitlistID, since).
		Count(&count).Error
	return count, err
}

func (s *MetricsService) sumReferralCounts(waitlistID uuid.UUID, verifiedOnly bool) (int64, error) {
	var sum int64
	q := s.db.Model(&models.Signup{}).Where("waitlist_id = ?", waitlistID)
	if verifiedOnly {
		q = q.Where("verified = true")
	}
	err := q.Select("COALESCE(SUM(referral_count), 0)").Scan(&sum).Error
	return sum, err
}

// kFactorOf is the viral coefficient: referrals generated by verified
// signups per verified signup, 0 when nothing is verified yet.
func kFactorOf(verifiedReferrals, verifiedSignups int64) float64 {
	if verifiedSignups == 0 {
		return 0
	}
	return round2(float64(verifiedReferrals) / float64(verifiedSignups))
}

func buildAdvocates(rows []models.Signup) []SuperAdvocate {
	setTotal := 0
	for _, row := range rows {
		setTotal += row.ReferralCount
	}

	advocates := make([]SuperAdvocate, 0, len(rows))
	for _, row := range rows {
		contribution := 0.0
		if setTotal > 0 {
			contribution = round1(float64(row.ReferralCount) / float64(setTotal) * 100)
		}
		advocates = append(advocates, SuperAdvocate{
			ID:                     row.ID,
			Email:                  row.Email,
			ReferralCount:          row.ReferralCount,
			EngagementScore:        row.EngagementScore,
			EmailOpens:             row.EmailOpens,
			LinkClicks:             row.LinkClicks,
			Verified:               row.Verified,
			CreatedAt:              row.CreatedAt,
			ContributionPercentage: contribution,
		})
	}
	return advocates
}

func groupDailyTrend(rows []models.Signup) []DailyTrendPoint {
	points := make([]DailyTrendPoint, 0)
	index := make(map[string]int)

	for _, row := range rows {
		date := row.CreatedAt.UTC().Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			points = append(points, DailyTrendPoint{Date: date})
			i = len(points) - 1
			index[date] = i
		}
		points[i].Total++
		if row.ReferredBy != nil {
			points[i].Referred++
		} else {
			points[i].Organic++
		}
	}
	return points
}

func averageVerifyMinutes(rows []models.Signup) *float64 {
	if len(rows) == 0 {
		return nil
	}

	totalMinutes := 0.0
	for _, row := range rows {
		if row.VerifiedAt == nil {
			continue
		}
		totalMinutes += row.VerifiedAt.Sub(row.CreatedAt).Minutes()
	}
	avg := round1(totalMinutes / float64(len(rows)))
	return &avg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
