// Package verification issues and checks the short numeric one-time codes
// used for account activation, password reset and delivery confirmation.
package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"cargo-delivery/apperrors"
)

// ActivationTTL is how long a registration code stays valid. Password reset
// and delivery codes carry no expiry.
const ActivationTTL = 2 * time.Hour

const codeRange = 900000 // codes span 100000..999999

// Generate returns a random 6-digit code, never with a leading zero.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Check compares a submitted code against the stored one. A nil expiresAt
// means the code never expires. Expiry is checked before the code itself.
func Check(candidate string, stored *string, expiresAt *time.Time) error {
	if stored == nil || *stored == "" {
		return apperrors.ErrNotFound
	}
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		return apperrors.ErrExpired
	}
	if *stored != candidate {
		return apperrors.ErrInvalidCode
	}
	return nil
}
