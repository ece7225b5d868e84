package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/waitlistpro/backend/middleware"
	"github.com/waitlistpro/backend/models"
	"github.com/waitlistpro/backend/services"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db      *gorm.DB
	metrics *services.MetricsService
	fraud   *services.FraudService
	invites *services.InviteService
}

func NewDashboardHandler(db *gorm.DB, metrics *services.MetricsService, fraud *services.FraudService, invites *services.InviteService) *DashboardHandler {
	return &DashboardHandler{db: db, metrics: metrics, fraud: fraud, invites: invites}
}

// Dashboard returns everything the owner dashboard renders in one request:
// the waitlist with its reward ladder, the viral metrics snapshot, the
// advocate ranking, the 30-day growth trend and the fraud stats.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	waitlist, status, err := ownedWaitlist(h.db, c.Params("id"), userID)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	err = h.db.Where("waitlist_id = ?", waitlist.ID).
		Order("threshold ASC").
		Find(&waitlist.Rewards).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load dashboard data"})
	}

	metrics, err := h.metrics.ViralMetrics(waitlist.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load dashboard data"})
	}
	advocates, err := h.metrics.SuperAdvocates(waitlist.ID, 50)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load dashboard data"})
	}
	dailyTrend, err := h.metrics.DailyGrowthTrend(waitlist.ID, 30)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load dashboard data"})
	}
	fraudStats, err := h.fraud.Stats(waitlist.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load dashboard data"})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"waitlist":   waitlist,
		"metrics":    metrics,
		"advocates":  advocates,
		"dailyTrend": dailyTrend,
		"fraudStats": fraudStats,
	})
}

type BatchInviteRequest struct {
	Count              int    `json:"count"`
	Filter             string `json:"filter" validate:"omitempty,oneof=top advocates"`
	CustomMessage      string `json:"customMessage"`
	SkipAlreadyInvited *bool  `json:"skipAlreadyInvited"`
}

// BatchInvite handles POST /dashboard/:id/invite, the launch-day tool.
func (h *DashboardHandler) BatchInvite(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	waitlist, status, err := ownedWaitlist(h.db, c.Params("id"), userID)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	var req BatchInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	skip := true
	if req.SkipAlreadyInvited != nil {
		skip = *req.SkipAlreadyInvited
	}

	result, err := h.invites.Run(waitlist, services.BatchInviteOptions{
		Count:              req.Count,
		Filter:             req.Filter,
		CustomMessage:      req.CustomMessage,
		SkipAlreadyInvited: skip,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send invites"})
	}

	if result.Total == 0 {
		return c.JSON(fiber.Map{"success": true, "message": "No signups to invite", "invited": 0})
	}

	resp := fiber.Map{
		"success": true,
		"invited": result.Sent,
		"failed":  result.Failed,
		"total":   result.Total,
	}
	if len(result.Errors) > 0 {
		resp["errors"] = result.Errors
	}
	return c.JSON(resp)
}

func (h *DashboardHandler) InviteStatus(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	waitlist, status, err := ownedWaitlist(h.db, c.Params("id"), userID)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	inviteStatus, err := h.invites.Status(waitlist.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get invite status"})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"totalVerified":  inviteStatus.TotalVerified,
		"alreadyInvited": inviteStatus.AlreadyInvited,
		"remaining":      inviteStatus.Remaining,
	})
}

type ExportRequest struct {
	Format string `json:"format" validate:"omitempty,oneof=csv json"`
	Filter string `json:"filter" validate:"omitempty,oneof=all verified unverified advocates"`
}

// Export handles POST /dashboard/:id/export: the signup roster as CSV
// attachment or JSON, ordered by position.
func (h *DashboardHandler) Export(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	waitlist, status, err := ownedWaitlist(h.db, c.Params("id"), userID)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	var req ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Format == "" {
		req.Format = "csv"
	}

	q := h.db.Where("waitlist_id = ?", waitlist.ID)
	switch req.Filter {
	case "verified":
		q = q.Where("verified = true")
	case "unverified":
		q = q.Where("verified = false")
	case "advocates":
		q = q.Where("referral_count > 0")
	}

	var signups []models.Signup
	if err := q.Order("position ASC").Find(&signups).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export data"})
	}

	if req.Format == "csv" {
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s-signups.csv"`, waitlist.Slug))
		return c.SendString(signupsCSV(signups))
	}

	return c.JSON(fiber.Map{"success": true, "count": len(signups), "signups": signups})
}

// signupsCSV renders the export body. encoding/csv quotes fields as needed,
// so an address with a comma in its quoted local part cannot break a row.
func signupsCSV(signups []models.Signup) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{
		"Email", "Position", "Verified", "Referral Code", "Referrals", "Referred By",
		"Engagement Score", "Signed Up", "Verified At", "Invited", "Invited At",
	})

	for _, s := range signups {
		referredBy := ""
		if s.ReferredBy != nil {
			referredBy = *s.ReferredBy
		}
		verifiedAt := ""
		if s.VerifiedAt != nil {
			verifiedAt = s.VerifiedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		invitedAt := ""
		if s.InvitedAt != nil {
			invitedAt = s.InvitedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		w.Write([]string{
			s.Email,
			fmt.Sprintf("%d", s.Position),
			yesNo(s.Verified),
			s.ReferralCode,
			fmt.Sprintf("%d", s.ReferralCount),
			referredBy,
			fmt.Sprintf("%g", s.EngagementScore),
			s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			verifiedAt,
			yesNo(s.Invited),
			invitedAt,
		})
	}

	w.Flush()
	return buf.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
