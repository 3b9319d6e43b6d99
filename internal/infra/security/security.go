package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"strings"
)

// SecureCompare performs a constant-time equality check between a known
// secret and user input.
func SecureCompare(known, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(known), []byte(supplied)) == 1
}

// HashUA hashes a User-Agent string for device binding. The hash is a soft
// signal against casual credential sharing, not an authentication factor.
func HashUA(ua string) string {
	sum := sha256.Sum256([]byte(ua))
	return hex.EncodeToString(sum[:])
}

// NewSessionID returns a fresh random 128-bit id as 32 hex characters.
func NewSessionID() (string, error) {
	var buf [16]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

// ValidateID enforces the shared identifier rule for quiz ids and referral
// codes: non-empty, at most maxLen characters, leading alphanumeric, body
// restricted to alphanumeric/dash/underscore, and no path traversal.
func ValidateID(id string, maxLen int) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	if !isAlnum(id[0]) {
		return false
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		if !isAlnum(ch) && ch != '-' && ch != '_' {
			return false
		}
	}
	if strings.Contains(id, "..") {
		return false
	}
	return true
}

func isAlnum(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}
