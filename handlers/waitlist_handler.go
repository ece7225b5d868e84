package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/waitlistpro/backend/middleware"
	"github.com/waitlistpro/backend/models"
	"github.com/waitlistpro/backend/utils"
	"gorm.io/gorm"
)

type WaitlistHandler struct {
	db *gorm.DB
}

func NewWaitlistHandler(db *gorm.DB) *WaitlistHandler {
	return &WaitlistHandler{db: db}
}

type CreateWaitlistRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description *string `json:"description"`
}

type waitlistWithCounts struct {
	models.Waitlist
	TotalSignups    int64 `json:"total_signups"`
	VerifiedSignups int64 `json:"verified_signups"`
}

// List returns the authenticated owner's waitlists with signup counts,
// newest first.
func (h *WaitlistHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var waitlists []models.Waitlist
	err = h.db.Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&waitlists).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get waitlists"})
	}

	out := make([]waitlistWithCounts, 0, len(waitlists))
	for _, wl := range waitlists {
		total, verified, err := h.signupCounts(wl.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get waitlists"})
		}
		out = append(out, waitlistWithCounts{Waitlist: wl, TotalSignups: total, VerifiedSignups: verified})
	}

	return c.JSON(fiber.Map{"success": true, "waitlists": out})
}

func (h *WaitlistHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreateWaitlistRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name must be at least 2 characters"})
	}

	slug := utils.Slugify(req.Name)
	var existing models.Waitlist
	err = h.db.Where("slug = ?", slug).First(&existing).Error
	if err == nil {
		slug = utils.UniqueSlugSuffix(slug)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create waitlist"})
	}

	waitlist := models.Waitlist{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Settings:    models.DefaultWaitlistSettings(),
		OwnerID:     userID,
	}
	if err := h.db.Create(&waitlist).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create waitlist"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "waitlist": waitlist})
}

type UpdateSettingsRequest struct {
	Name        *string                  `json:"name"`
	Description *string                  `json:"description"`
	Settings    *models.WaitlistSettings `json:"settings"`
}

func (h *WaitlistHandler) UpdateSettings(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	waitlist, status, err := ownedWaitlist(h.db, c.Params("id"), userID)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.Name != nil && len(*req.Name) >= 2 {
		waitlist.Name = *req.Name
	}
	if req.Description != nil {
		waitlist.Description = req.Description
	}
	if req.Settings != nil {
		waitlist.Settings = *req.Settings
	}

	if err := h.db.Save(waitlist).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update waitlist"})
	}

	return c.JSON(fiber.Map{"success": true, "waitlist": waitlist})
}

// GetPublic serves the unauthenticated widget payload for a waitlist slug.
func (h *WaitlistHandler) GetPublic(c *fiber.Ctx) error {
	var waitlist models.Waitlist
	err := h.db.Where("slug = ?", c.Params("slug")).First(&waitlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Waitlist not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get waitlist"})
	}

	total, verified, err := h.signupCounts(waitlist.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get waitlist"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"waitlist": fiber.Map{
			"name":             waitlist.Name,
			"slug":             waitlist.Slug,
			"description":      waitlist.Description,
			"settings":         waitlist.Settings,
			"total_signups":    total,
			"verified_signups": verified,
		},
	})
}

func (h *WaitlistHandler) signupCounts(waitlistID any) (int64, int64, error) {
	var total, verified int64
	err := h.db.Model(&models.Signup{}).Where("waitlist_id = ?", waitlistID).Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = h.db.Model(&models.Signup{}).Where("waitlist_id = ? AND verified = true", waitlistID).Count(&verified).Error
	return total, verified, err
}
