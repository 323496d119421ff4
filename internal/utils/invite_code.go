package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Invite codes are 12 hex characters grouped for readability,
// e.g. a1b2-c3d4-e5f6.
const inviteCodeBytes = 6

// GenerateInviteCode returns a random invite code.
func GenerateInviteCode() (string, error) {
	raw := make([]byte, inviteCodeBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	encoded := hex.EncodeToString(raw)
	return strings.Join([]string{encoded[0:4], encoded[4:8], encoded[8:12]}, "-"), nil
}
