package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/waitlistpro/backend/models"
	"gorm.io/gorm"
)

const referralCodeLength = 8
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReferralCode returns a short shareable code that is unique within
// the given waitlist, retrying on the rare collision.
func GenerateReferralCode(tx *gorm.DB, waitlistID uuid.UUID) (string, error) {
	for {
		code, err := randomCode(referralCodeLength)
		if err != nil {
			return "", err
		}

		var count int64
		err = tx.Model(&models.Signup{}).
			Where("waitlist_id = ? AND referral_code = ?", waitlistID, code).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
}

// GenerateVerifyToken returns a 64-char hex one-time verification token.
func GenerateVerifyToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate verify token: %w", err)
	}
	return hex.EncodeToString(tokenBytes), nil
}

func randomCode(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}
