// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidAdminKey = errors.New("invalid admin key")

// NewID returns a random UUIDv4 string for database records
func NewID() string {
	return uuid.NewString()
}

// GenerateAdminKey creates an HMAC-based creator key for a plan
// This is deterministic and verifiable
func GenerateAdminKey(planID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(planID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the plan
func ValidateAdminKey(planID, adminKey, salt string) error {
	if adminKey == "" {
		return ErrInvalidAdminKey
	}
	expected := GenerateAdminKey(planID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}
