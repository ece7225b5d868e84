package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/waitlistpro/backend/models"
	"github.com/waitlistpro/backend/notifications"
	"github.com/waitlistpro/backend/services"
	"github.com/waitlistpro/backend/utils"
	"gorm.io/gorm"
)

type SignupHandler struct {
	db        *gorm.DB
	fraud     *services.FraudService
	referrals *services.ReferralService
	mailer    notifications.Mailer
}

func NewSignupHandler(db *gorm.DB, fraud *services.FraudService, referrals *services.ReferralService, mailer notifications.Mailer) *SignupHandler {
	return &SignupHandler{db: db, fraud: fraud, referrals: referrals, mailer: mailer}
}

type SignupRequest struct {
	Email string  `json:"email" validate:"required,email"`
	Ref   *string `json:"ref"`
}

type VerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type PositionRequest struct {
	ReferralCode string `json:"referralCode" validate:"required"`
}

// Create handles POST /waitlists/:slug/signups: fraud-check the attempt,
// assign the next position, wire up the referral and queue the verification
// email.
func (h *SignupHandler) Create(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Valid email required"})
	}
	email := strings.ToLower(req.Email)

	waitlist, status, err := h.waitlistBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	ip := clientIP(c)

	fraudResult, err := h.fraud.RunChecks(waitlist.ID, email, ip, req.Ref)
	if err != nil {
		log.Printf("🔥 Fraud check failed for %s: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process signup"})
	}
	if !fraudResult.IsValid {
		reason := fraudResult.Reason
		if reason == "" {
			reason = "Unable to process signup"
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": reason})
	}

	var existing models.Signup
	err = h.db.Where("waitlist_id = ? AND email = ?", waitlist.ID, email).First(&existing).Error
	if err == nil {
		if existing.Verified {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This email is already on the waitlist"})
		}
		// Unverified duplicate: keep the original row and resend the link.
		if existing.VerifyToken != nil {
			h.sendVerification(email, waitlist, *existing.VerifyToken)
		}
		return c.JSON(fiber.Map{
			"success":              true,
			"message":              "Verification email resent. Please check your inbox.",
			"requiresVerification": true,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process signup"})
	}

	// A referral code that no longer resolves is stored as null so the
	// signup counts as organic.
	referredBy := req.Ref
	if referredBy != nil && *referredBy != "" {
		exists, err := h.referrals.CodeExists(waitlist.ID, *referredBy)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process signup"})
		}
		if !exists {
			log.Printf("Invalid referral code used on %s: %s", waitlist.Slug, *referredBy)
			referredBy = nil
		}
	} else {
		referredBy = nil
	}

	var signup models.Signup
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var currentCount int64
		if err := tx.Model(&models.Signup{}).Where("waitlist_id = ?", waitlist.ID).Count(&currentCount).Error; err != nil {
			return err
		}

		referralCode, err := utils.GenerateReferralCode(tx, waitlist.ID)
		if err != nil {
			return err
		}
		verifyToken, err := utils.GenerateVerifyToken()
		if err != nil {
			return err
		}

		signup = models.Signup{
			WaitlistID:   waitlist.ID,
			Email:        email,
			Position:     nextPosition(currentCount),
			ReferralCode: referralCode,
			VerifyToken:  &verifyToken,
			ReferredBy:   referredBy,
			FraudFlags:   fraudResult.Flags,
			IpAddress:    ip,
			UserAgent:    optionalHeader(c, "User-Agent"),
			ReferrerURL:  optionalHeader(c, "Referer"),
		}
		if err := tx.Create(&signup).Error; err != nil {
			return err
		}

		if referredBy != nil {
			if err := h.referrals.CreditReferral(tx, waitlist.ID, *referredBy); err != nil {
				return err
			}
		}

		event := models.AnalyticsEvent{
			WaitlistID: waitlist.ID,
			Type:       models.EventTypeSignup,
			SignupID:   &signup.ID,
			Metadata:   map[string]any{"referredBy": referredBy, "position": signup.Position},
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		log.Printf("🔥 Failed to create signup for %s: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process signup"})
	}

	h.sendVerification(email, waitlist, *signup.VerifyToken)

	return c.JSON(fiber.Map{
		"success":              true,
		"message":              "Please check your email to verify your spot!",
		"requiresVerification": true,
		"position":             signup.Position,
	})
}

// Verify handles POST /waitlists/:slug/verify: consume the one-time token,
// mark the spot verified and run the referrer's reward-unlock check.
func (h *SignupHandler) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Verification token required"})
	}

	waitlist, status, err := h.waitlistBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	var signup models.Signup
	err = h.db.Where("waitlist_id = ? AND verify_token = ?", waitlist.ID, req.Token).First(&signup).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or expired verification link"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify email"})
	}

	reply, alreadyVerified := verificationReply(&signup)
	if alreadyVerified {
		return c.JSON(reply)
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		err := tx.Model(&models.Signup{}).
			Where("id = ?", signup.ID).
			Updates(map[string]any{
				"verified":     true,
				"verified_at":  now,
				"verify_token": nil, // single use
			}).Error
		if err != nil {
			return err
		}

		event := models.AnalyticsEvent{
			WaitlistID: waitlist.ID,
			Type:       models.EventTypeVerify,
			SignupID:   &signup.ID,
			Metadata:   map[string]any{"position": signup.Position},
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		if signup.ReferredBy != nil {
			referralEvent := models.AnalyticsEvent{
				WaitlistID: waitlist.ID,
				Type:       models.EventTypeReferral,
				Metadata: map[string]any{
					"referrerCode": *signup.ReferredBy,
					"newSignupId":  signup.ID.String(),
				},
			}
			if err := tx.Create(&referralEvent).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("🔥 Failed to verify signup %s: %v", signup.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify email"})
	}

	if signup.ReferredBy != nil {
		h.referrals.CheckRewardUnlock(waitlist, *signup.ReferredBy)
	}

	if h.mailer != nil {
		go func() {
			err := h.mailer.SendWelcomeEmail(signup.Email, waitlist.Name, waitlist.Slug, signup.Position, signup.ReferralCode)
			if err != nil {
				log.Printf("🔥 Failed to send welcome email to %s: %v", signup.Email, err)
			}
		}()
	}

	return c.JSON(reply)
}

// nextPosition assigns the next spot in line. Positions start at 1 and only
// grow as the roster does; verification never reshuffles them.
func nextPosition(currentCount int64) int {
	return int(currentCount) + 1
}

// verificationReply builds the verify response. An already-verified signup
// short-circuits with alreadyVerified set: the token was consumed on the
// first call and no further events or emails are produced.
func verificationReply(signup *models.Signup) (fiber.Map, bool) {
	if signup.Verified {
		return fiber.Map{
			"success":         true,
			"message":         "Your email is already verified!",
			"alreadyVerified": true,
			"position":        signup.Position,
			"referralCode":    signup.ReferralCode,
		}, true
	}
	return fiber.Map{
		"success":      true,
		"message":      "Your email is verified! You're on the list.",
		"position":     signup.Position,
		"referralCode": signup.ReferralCode,
	}, false
}

// Position handles POST /waitlists/:slug/position: the public "check your
// spot" page keyed by referral code.
func (h *SignupHandler) Position(c *fiber.Ctx) error {
	var req PositionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Referral code required"})
	}

	waitlist, status, err := h.waitlistBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	var signup models.Signup
	err = h.db.Where("waitlist_id = ? AND referral_code = ?", waitlist.ID, req.ReferralCode).First(&signup).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Position not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check position"})
	}

	var totalVerified int64
	err = h.db.Model(&models.Signup{}).
		Where("waitlist_id = ? AND verified = true", waitlist.ID).
		Count(&totalVerified).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check position"})
	}

	unlocked, next, err := h.referrals.RewardProgress(waitlist.ID, signup.ReferralCount)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check position"})
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"position":        signup.Position,
		"totalSignups":    totalVerified,
		"referralCount":   signup.ReferralCount,
		"referralCode":    signup.ReferralCode,
		"verified":        signup.Verified,
		"unlockedRewards": unlocked,
		"nextReward":      next,
	})
}

func (h *SignupHandler) waitlistBySlug(slug string) (*models.Waitlist, int, error) {
	var waitlist models.Waitlist
	err := h.db.Where("slug = ?", slug).First(&waitlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.StatusNotFound, errors.New("Waitlist not found")
		}
		return nil, fiber.StatusInternalServerError, errors.New("Failed to load waitlist")
	}
	return &waitlist, fiber.StatusOK, nil
}

func (h *SignupHandler) sendVerification(email string, waitlist *models.Waitlist, token string) {
	if h.mailer == nil {
		log.Println("Email client not initialized, skipping verification email.")
		return
	}
	go func() {
		if err := h.mailer.SendVerificationEmail(email, waitlist.Name, waitlist.Slug, token); err != nil {
			log.Printf("🔥 Failed to send verification email to %s: %v", email, err)
		}
	}()
}
