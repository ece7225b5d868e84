package models

import (
	"time"

	"github.com/google/uuid"
)

type Reward struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WaitlistID uuid.UUID `gorm:"type:uuid;not null;index" json:"waitlist_id"`

	// Threshold is the referral count required to unlock this reward.
	// Thresholds are distinct per waitlist and read in ascending order.
	Threshold   int     `gorm:"not null" json:"threshold"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description *string `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
}
