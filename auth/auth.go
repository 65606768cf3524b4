// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var (
	ErrMissingDashboardKey = errors.New("missing dashboard key")
	ErrInvalidDashboardKey = errors.New("invalid dashboard key")
)

// ValidateDashboardKey checks a key presented by the dashboard against the
// configured secret. An empty secret rejects every key.
func ValidateDashboardKey(provided, expected string) error {
	if provided == "" {
		return ErrMissingDashboardKey
	}
	if expected == "" {
		return ErrInvalidDashboardKey
	}
	// Compare digests so the comparison time does not depend on key length
	p := sha256.Sum256([]byte(provided))
	e := sha256.Sum256([]byte(expected))
	if !hmac.Equal(p[:], e[:]) {
		return ErrInvalidDashboardKey
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough to tell clients apart in logs
	return hex.EncodeToString(sum[:8])
}
