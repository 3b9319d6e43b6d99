package usecase

import (
	"crypto/rand"
	"io"
	"strings"
)

// codeAlphabet avoids visually ambiguous characters like O/0, I/1, l.
// 32 symbols divide 256 evenly, so the modulo draw below is unbiased.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeGroups   = 4
	codeGroupLen = 4
)

// generateCode creates a random activation code shaped
// PREFIX-XXXX-XXXX-XXXX-XXXX.
func generateCode(prefix string) (string, error) {
	buf := make([]byte, codeGroups*codeGroupLen)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(prefix)
	for i, c := range buf {
		if i%codeGroupLen == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}

// IsCodeShaped reports whether input looks like an activation code before
// any map lookup happens: letters, digits and dashes only.
func IsCodeShaped(code string) bool {
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch >= 'A' && ch <= 'Z':
		case ch >= 'a' && ch <= 'z':
		case ch >= '0' && ch <= '9':
		case ch == '-':
		default:
			return false
		}
	}
	return true
}
