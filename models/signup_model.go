package models

import (
	"time"

	"github.com/google/uuid"
)

// FraudFlags is the flag set captured by the fraud checks at signup time,
// persisted alongside the row as JSON.
type FraudFlags struct {
	DisposableEmail   bool `json:"disposableEmail"`
	SuspiciousPattern bool `json:"suspiciousPattern"`
	SameIpReferral    bool `json:"sameIpReferral"`
	IpRateLimit       bool `json:"ipRateLimit"`
	RapidSignup       bool `json:"rapidSignup"`
}

type Signup struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WaitlistID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_waitlist_email,priority:1;uniqueIndex:idx_waitlist_referral_code,priority:1" json:"waitlist_id"`
	Email      string    `gorm:"size:255;not null;uniqueIndex:idx_waitlist_email,priority:2" json:"email"`

	// Position is the 1-based join order within the waitlist, assigned at
	// creation and never renumbered.
	Position int `gorm:"not null" json:"position"`

	ReferralCode string  `gorm:"size:16;not null;uniqueIndex:idx_waitlist_referral_code,priority:2" json:"referral_code"`
	VerifyToken  *string `gorm:"size:128;index" json:"-"`

	Verified   bool       `gorm:"default:false;index" json:"verified"`
	VerifiedAt *time.Time `json:"verified_at"`
	Invited    bool       `gorm:"default:false" json:"invited"`
	InvitedAt  *time.Time `json:"invited_at"`

	// ReferredBy holds the referral code of the signup that referred this
	// one. Codes are public and shareable; ids are not, so the relation is
	// kept as a code string rather than a foreign key.
	ReferredBy    *string `gorm:"size:16;index" json:"referred_by"`
	ReferralCount int     `gorm:"default:0" json:"referral_count"`

	FraudFlags FraudFlags `gorm:"serializer:json" json:"fraud_flags"`

	IpAddress   *string `gorm:"size:64" json:"-"`
	UserAgent   *string `gorm:"size:512" json:"-"`
	ReferrerURL *string `gorm:"size:512" json:"-"`

	// Engagement fields are populated by the email tracking webhooks, not
	// by the core signup flow.
	EmailOpens      int     `gorm:"default:0" json:"email_opens"`
	LinkClicks      int     `gorm:"default:0" json:"link_clicks"`
	EngagementScore float64 `gorm:"default:0" json:"engagement_score"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
