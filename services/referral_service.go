package services

import (
	"log"

	"github.com/google/uuid"
	"github.com/waitlistpro/backend/models"
	"github.com/waitlistpro/backend/notifications"
	"gorm.io/gorm"
)

// NextReward describes the closest locked reward for a signup's position
// page, with how many more referrals it takes.
type NextReward struct {
	Title           string `json:"title"`
	Threshold       int    `json:"threshold"`
	ReferralsNeeded int    `json:"referralsNeeded"`
}

type ReferralService struct {
	db     *gorm.DB
	mailer notifications.Mailer
}

func NewReferralService(db *gorm.DB, mailer notifications.Mailer) *ReferralService {
	return &ReferralService{db: db, mailer: mailer}
}

// CodeExists reports whether a referral code resolves within the waitlist.
// Signup creation nulls out codes that don't, so dangling references read
// as organic everywhere downstream.
func (s *ReferralService) CodeExists(waitlistID uuid.UUID, code string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Signup{}).
		Where("waitlist_id = ? AND referral_code = ?", waitlistID, code).
		Count(&count).Error
	return count > 0, err
}

// CreditReferral bumps the referrer's count by one. The UPDATE is the atomic
// primitive the store provides; matching zero rows is a silent no-op since
// the code may have gone stale between validation and commit.
func (s *ReferralService) CreditReferral(tx *gorm.DB, waitlistID uuid.UUID, code string) error {
	return tx.Model(&models.Signup{}).
		Where("waitlist_id = ? AND referral_code = ?", waitlistID, code).
		UpdateColumn("referral_count", gorm.Expr("referral_count + ?", 1)).Error
}

// CheckRewardUnlock runs after a referred signup verifies. It looks up the
// referrer, finds the reward whose threshold the count just crossed, and
// dispatches the reward email. Failures are logged and never propagate into
// the verification flow.
func (s *ReferralService) CheckRewardUnlock(waitlist *models.Waitlist, referredBy string) *models.Reward {
	var referrer models.Signup
	err := s.db.Where("waitlist_id = ? AND referral_code = ?", waitlist.ID, referredBy).
		First(&referrer).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("🔥 Failed to look up referrer %s: %v", referredBy, err)
		}
		return nil
	}

	var rewards []models.Reward
	err = s.db.Where("waitlist_id = ?", waitlist.ID).
		Order("threshold ASC").
		Find(&rewards).Error
	if err != nil {
		log.Printf("🔥 Failed to load rewards for waitlist %s: %v", waitlist.ID, err)
		return nil
	}

	unlocked := newlyUnlockedReward(rewards, referrer.ReferralCount)
	if unlocked == nil {
		return nil
	}

	if s.mailer != nil {
		description := ""
		if unlocked.Description != nil {
			description = *unlocked.Description
		}
		go func(reward models.Reward, count int) {
			err := s.mailer.SendRewardEmail(referrer.Email, waitlist.Name, reward.Title, description, count)
			if err != nil {
				log.Printf("🔥 Failed to send reward email to %s: %v", referrer.Email, err)
			}
		}(*unlocked, referrer.ReferralCount)
	}

	return unlocked
}

// RewardProgress returns the rewards already unlocked at referralCount and
// the next milestone, for the public position page.
func (s *ReferralService) RewardProgress(waitlistID uuid.UUID, referralCount int) ([]models.Reward, *NextReward, error) {
	var unlocked []models.Reward
	err := s.db.Where("waitlist_id = ? AND threshold <= ?", waitlistID, referralCount).
		Order("threshold ASC").
		Find(&unlocked).Error
	if err != nil {
		return nil, nil, err
	}

	var next models.Reward
	err = s.db.Where("waitlist_id = ? AND threshold > ?", waitlistID, referralCount).
		Order("threshold ASC").
		First(&next).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return unlocked, nil, nil
		}
		return nil, nil, err
	}

	return unlocked, &NextReward{
		Title:           next.Title,
		Threshold:       next.Threshold,
		ReferralsNeeded: next.Threshold - referralCount,
	}, nil
}

// newlyUnlockedReward finds the reward whose threshold sits exactly on the
// boundary the count just crossed, i.e. newCount reached it and newCount-1
// had not. Counts move by one, so at most one reward straddles the boundary.
func newlyUnlockedReward(rewards []models.Reward, newCount int) *models.Reward {
	for i := range rewards {
		if newCount >= rewards[i].Threshold && newCount-1 < rewards[i].Threshold {
			return &rewards[i]
		}
	}
	return nil
}
