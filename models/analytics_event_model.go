package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSignup   = "signup"
	EventTypeVerify   = "verify"
	EventTypeReferral = "referral"
	EventTypeInvite   = "invite"
)

// AnalyticsEvent is an append-only audit log entry. Rows are written as side
// effects of signup, verification and invitation and are never mutated; the
// metrics engine recomputes from signup rows and does not read them.
type AnalyticsEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WaitlistID uuid.UUID      `gorm:"type:uuid;not null;index" json:"waitlist_id"`
	Type       string         `gorm:"size:20;not null" json:"type"`
	SignupID   *uuid.UUID     `gorm:"type:uuid" json:"signup_id"`
	Metadata   map[string]any `gorm:"serializer:json" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}
