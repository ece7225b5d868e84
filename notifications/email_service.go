package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const brevoURL = "https://api.brevo.com/v3/smtp/email"

// Mailer is what the business flows depend on; the Brevo-backed service
// implements it and tests swap in a fake.
type Mailer interface {
	SendVerificationEmail(to, waitlistName, waitlistSlug, verifyToken string) error
	SendWelcomeEmail(to, waitlistName, waitlistSlug string, position int, referralCode string) error
	SendInviteEmail(to, waitlistName, customMessage string) error
	SendRewardEmail(to, waitlistName, rewardTitle, rewardDescription string, referralCount int) error
}

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	AppURL      string

	client *http.Client
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewBrevoService builds the mail client. Returns nil when the account is
// not configured; callers treat a nil Mailer as "log and skip".
func NewBrevoService(apiKey, senderEmail, senderName, appURL string) *BrevoService {
	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Println("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		return nil
	}

	log.Printf("✅ Email service initialized for sender %s <%s>", senderName, senderEmail)
	return &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		AppURL:      appURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *BrevoService) send(toEmail, subject, htmlContent string) error {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toEmail[:strings.Index(toEmail, "@")]

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", brevoURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		log.Printf("Brevo API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("failed to send email via Brevo: %s", string(bodyBytes))
	}

	return nil
}

func (s *BrevoService) SendVerificationEmail(to, waitlistName, waitlistSlug, verifyToken string) error {
	verifyURL := fmt.Sprintf("%s/w/%s/verify?token=%s", s.AppURL, waitlistSlug, verifyToken)
	subject := fmt.Sprintf("Verify your spot on %s", waitlistName)
	return s.send(to, subject, verificationHTML(waitlistName, verifyURL))
}

func (s *BrevoService) SendWelcomeEmail(to, waitlistName, waitlistSlug string, position int, referralCode string) error {
	referralURL := fmt.Sprintf("%s/w/%s?ref=%s", s.AppURL, waitlistSlug, referralCode)
	positionURL := fmt.Sprintf("%s/w/%s/%s", s.AppURL, waitlistSlug, referralCode)
	subject := fmt.Sprintf("You're #%d on %s!", position, waitlistName)
	return s.send(to, subject, welcomeHTML(waitlistName, position, referralURL, positionURL))
}

func (s *BrevoService) SendInviteEmail(to, waitlistName, customMessage string) error {
	subject := fmt.Sprintf("You're invited! %s is live!", waitlistName)
	return s.send(to, subject, inviteHTML(waitlistName, customMessage))
}

func (s *BrevoService) SendRewardEmail(to, waitlistName, rewardTitle, rewardDescription string, referralCount int) error {
	subject := fmt.Sprintf("You unlocked: %s!", rewardTitle)
	return s.send(to, subject, rewardHTML(waitlistName, rewardTitle, rewardDescription, referralCount))
}
