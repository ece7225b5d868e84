package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitlistpro/backend/models"
)

type fakeInviteStore struct {
	candidates []models.Signup
	verified   int64
	invited    int64

	gotCount  int
	gotFilter string
	gotSkip   bool

	marked []uuid.UUID
	events []uuid.UUID
}

func (f *fakeInviteStore) InviteCandidates(waitlistID uuid.UUID, count int, filter string, skipInvited bool) ([]models.Signup, error) {
	f.gotCount = count
	f.gotFilter = filter
	f.gotSkip = skipInvited
	if count < len(f.candidates) {
		return f.candidates[:count], nil
	}
	return f.candidates, nil
}

func (f *fakeInviteStore) MarkInvited(signupID uuid.UUID) error {
	f.marked = append(f.marked, signupID)
	return nil
}

func (f *fakeInviteStore) AppendInviteEvent(waitlistID, signupID uuid.UUID) error {
	f.events = append(f.events, signupID)
	return nil
}

func (f *fakeInviteStore) InviteCounts(waitlistID uuid.UUID) (int64, int64, error) {
	return f.verified, f.invited, nil
}

type fakeMailer struct {
	failFor map[string]bool
	sent    []string
}

func (m *fakeMailer) SendVerificationEmail(to, waitlistName, waitlistSlug, verifyToken string) error {
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(to, waitlistName, waitlistSlug string, position int, referralCode string) error {
	return nil
}

func (m *fakeMailer) SendInviteEmail(to, waitlistName, customMessage string) error {
	if m.failFor[to] {
		return errors.New("brevo unavailable")
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *fakeMailer) SendRewardEmail(to, waitlistName, rewardTitle, rewardDescription string, referralCount int) error {
	return nil
}

func eligibleSignups(n int) []models.Signup {
	signups := make([]models.Signup, 0, n)
	for i := 0; i < n; i++ {
		signups = append(signups, models.Signup{
			ID:       uuid.New(),
			Email:    string(rune('a'+i)) + "@x.com",
			Position: i + 1,
			Verified: true,
		})
	}
	return signups
}

func TestBatchInvite_AllSucceed(t *testing.T) {
	store := &fakeInviteStore{candidates: eligibleSignups(3)}
	mailer := &fakeMailer{}
	svc := &InviteService{store: store, mailer: mailer}
	waitlist := &models.Waitlist{ID: uuid.New(), Name: "Launch"}

	result, err := svc.Run(waitlist, BatchInviteOptions{Count: 5, SkipAlreadyInvited: true})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Total) // only 3 eligible despite count=5
	assert.Equal(t, 3, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
	assert.Len(t, store.marked, 3)
	assert.Len(t, store.events, 3)
}

func TestBatchInvite_PartialFailure(t *testing.T) {
	candidates := eligibleSignups(3)
	store := &fakeInviteStore{candidates: candidates}
	mailer := &fakeMailer{failFor: map[string]bool{candidates[1].Email: true}}
	svc := &InviteService{store: store, mailer: mailer}
	waitlist := &models.Waitlist{ID: uuid.New(), Name: "Launch"}

	result, err := svc.Run(waitlist, BatchInviteOptions{Count: 10})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], candidates[1].Email)

	// The failed signup must not be marked invited.
	assert.NotContains(t, store.marked, candidates[1].ID)
	assert.Len(t, store.marked, 2)
	assert.Len(t, store.events, 2)
}

func TestBatchInvite_NoMailerConfigured(t *testing.T) {
	store := &fakeInviteStore{candidates: eligibleSignups(2)}
	svc := &InviteService{store: store}
	waitlist := &models.Waitlist{ID: uuid.New(), Name: "Launch"}

	result, err := svc.Run(waitlist, BatchInviteOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 2, result.Failed)
	assert.Empty(t, store.marked)
}

func TestBatchInvite_Defaults(t *testing.T) {
	store := &fakeInviteStore{}
	svc := &InviteService{store: store, mailer: &fakeMailer{}}
	waitlist := &models.Waitlist{ID: uuid.New(), Name: "Launch"}

	result, err := svc.Run(waitlist, BatchInviteOptions{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, defaultInviteCount, store.gotCount)
	assert.Equal(t, InviteFilterTop, store.gotFilter)
	assert.False(t, store.gotSkip)
}

func TestInviteStatus(t *testing.T) {
	store := &fakeInviteStore{verified: 10, invited: 4}
	svc := &InviteService{store: store}

	status, err := svc.Status(uuid.New())

	require.NoError(t, err)
	assert.Equal(t, int64(10), status.TotalVerified)
	assert.Equal(t, int64(4), status.AlreadyInvited)
	assert.Equal(t, int64(6), status.Remaining)
}
