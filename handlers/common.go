package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/waitlistpro/backend/models"
	"gorm.io/gorm"
)

// ownedWaitlist loads a waitlist by id and checks it belongs to the caller.
// The error is ready to serialize with the returned HTTP status.
func ownedWaitlist(db *gorm.DB, rawID string, userID uuid.UUID) (*models.Waitlist, int, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fiber.StatusBadRequest, errors.New("Invalid waitlist id")
	}

	var waitlist models.Waitlist
	err = db.First(&waitlist, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.StatusNotFound, errors.New("Waitlist not found")
		}
		return nil, fiber.StatusInternalServerError, errors.New("Failed to load waitlist")
	}

	if waitlist.OwnerID != userID {
		return nil, fiber.StatusForbidden, errors.New("Forbidden")
	}
	return &waitlist, fiber.StatusOK, nil
}

// clientIP prefers the first X-Forwarded-For hop, matching what the edge
// proxy sets in production.
func clientIP(c *fiber.Ctx) *string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ips := c.IPs()
		if len(ips) > 0 {
			return &ips[0]
		}
	}
	if ip := c.IP(); ip != "" {
		return &ip
	}
	return nil
}

func optionalHeader(c *fiber.Ctx, key string) *string {
	if v := c.Get(key); v != "" {
		return &v
	}
	return nil
}
