package models

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistSettings is the free-form appearance document for the public
// signup widget, stored as a JSON column.
type WaitlistSettings struct {
	PrimaryColor   string `json:"primaryColor"`
	ButtonText     string `json:"buttonText"`
	SuccessMessage string `json:"successMessage"`
	ShowCount      bool   `json:"showCount"`
}

func DefaultWaitlistSettings() WaitlistSettings {
	return WaitlistSettings{
		PrimaryColor:   "#3B82F6",
		ButtonText:     "Join Waitlist",
		SuccessMessage: "Check your email to verify your spot!",
		ShowCount:      true,
	}
}

type Waitlist struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string           `gorm:"size:255;not null" json:"name"`
	Slug        string           `gorm:"size:255;not null;unique" json:"slug"`
	Description *string          `gorm:"type:text" json:"description"`
	Settings    WaitlistSettings `gorm:"serializer:json" json:"settings"`
	OwnerID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"owner_id"`

	Owner   User     `gorm:"foreignkey:OwnerID" json:"-"`
	Rewards []Reward `gorm:"foreignkey:WaitlistID" json:"rewards"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
