package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/waitlistpro/backend/models"
	"github.com/waitlistpro/backend/notifications"
	"gorm.io/gorm"
)

const (
	InviteFilterTop       = "top"       // by position, ascending
	InviteFilterAdvocates = "advocates" // by referral count, descending

	defaultInviteCount = 100
)

var errMailerNotConfigured = errors.New("email service not configured")

type BatchInviteOptions struct {
	Count              int
	Filter             string
	CustomMessage      string
	SkipAlreadyInvited bool
}

// BatchInviteResult reports the launch batch outcome. Per-item failures are
// collected, not retried; the batch itself succeeds as long as the candidate
// set could be iterated.
type BatchInviteResult struct {
	Sent   int      `json:"invited"`
	Failed int      `json:"failed"`
	Total  int      `json:"total"`
	Errors []string `json:"errors,omitempty"`
}

type InviteStatus struct {
	TotalVerified  int64 `json:"totalVerified"`
	AlreadyInvited int64 `json:"alreadyInvited"`
	Remaining      int64 `json:"remaining"`
}

type inviteStore interface {
	InviteCandidates(waitlistID uuid.UUID, count int, filter string, skipInvited bool) ([]models.Signup, error)
	MarkInvited(signupID uuid.UUID) error
	AppendInviteEvent(waitlistID, signupID uuid.UUID) error
	InviteCounts(waitlistID uuid.UUID) (verified int64, invited int64, err error)
}

type InviteService struct {
	store  inviteStore
	mailer notifications.Mailer
}

func NewInviteService(db *gorm.DB, mailer notifications.Mailer) *InviteService {
	return &InviteService{store: &gormInviteStore{db: db}, mailer: mailer}
}

// Run selects up to Count verified signups and invites them one at a time.
// A signup is marked invited only after its email went out, so a crashed or
// partially failed batch can simply be re-run with SkipAlreadyInvited.
func (s *InviteService) Run(waitlist *models.Waitlist, opts BatchInviteOptions) (*BatchInviteResult, error) {
	if opts.Count <= 0 {
		opts.Count = defaultInviteCount
	}
	if opts.Filter == "" {
		opts.Filter = InviteFilterTop
	}

	candidates, err := s.store.InviteCandidates(waitlist.ID, opts.Count, opts.Filter, opts.SkipAlreadyInvited)
	if err != nil {
		return nil, err
	}

	result := &BatchInviteResult{Total: len(candidates), Errors: []string{}}
	for _, signup := range candidates {
		if err := s.inviteOne(waitlist, signup, opts.CustomMessage); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to invite %s: %v", signup.Email, err))
			continue
		}
		result.Sent++
	}
	return result, nil
}

func (s *InviteService) inviteOne(waitlist *models.Waitlist, signup models.Signup, customMessage string) error {
	if s.mailer == nil {
		return errMailerNotConfigured
	}
	if err := s.mailer.SendInviteEmail(signup.Email, waitlist.Name, customMessage); err != nil {
		return err
	}
	if err := s.store.MarkInvited(signup.ID); err != nil {
		return err
	}
	if err := s.store.AppendInviteEvent(waitlist.ID, signup.ID); err != nil {
		return err
	}
	return nil
}

func (s *InviteService) Status(waitlistID uuid.UUID) (*InviteStatus, error) {
	verified, invited, err := s.store.InviteCounts(waitlistID)
	if err != nil {
		return nil, err
	}
	return &InviteStatus{
		TotalVerified:  verified,
		AlreadyInvited: invited,
		Remaining:      verified - invited,
	}, nil
}

type gormInviteStore struct {
	db *gorm.DB
}

func (g *gormInviteStore) InviteCandidates(waitlistID uuid.UUID, count int, filter string, skipInvited bool) ([]models.Signup, error) {
	q := g.db.Where("waitlist_id = ? AND verified = true", waitlistID)
	if skipInvited {
		q = q.Where("invited = false")
	}

	order := "position ASC"
	if filter == InviteFilterAdvocates {
		order = "referral_count DESC"
	}

	var signups []models.Signup
	err := q.Order(order).Limit(count).Find(&signups).Error
	return signups, err
}

func (g *gormInviteStore) MarkInvited(signupID uuid.UUID) error {
	now := time.Now()
	return g.db.Model(&models.Signup{}).
		Where("id = ?", signupID).
		Updates(map[string]any{"invited": true, "invited_at": now}).Error
}

func (g *gormInviteStore) AppendInviteEvent(waitlistID, signupID uuid.UUID) error {
	event := models.AnalyticsEvent{
		WaitlistID: waitlistID,
		Type:       models.EventTypeInvite,
		SignupID:   &signupID,
		Metadata:   map[string]any{"batch": true},
	}
	return g.db.Create(&event).Error
}

func (g *gormInviteStore) InviteCounts(waitlistID uuid.UUID) (int64, int64, error) {
	var verified, invited int64
	err := g.db.Model(&models.Signup{}).
		Where("waitlist_id = ? AND verified = true", waitlistID).
		Count(&verified).Error
	if err != nil {
		return 0, 0, err
	}
	err = g.db.Model(&models.Signup{}).
		Where("waitlist_id = ? AND invited = true", waitlistID).
		Count(&invited).Error
	return verified, invited, err
}
