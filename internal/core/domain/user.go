package domain

import (
	"time"
	"unicode/utf8"
)

const (
	UsernameMinLen = 5
	UsernameMaxLen = 20
	PasswordMinLen = 6
	PasswordMaxLen = 40
)

// Credential is the stored account record. HashedPassword is the output of
// pepper-then-hash and never leaves the process.
type Credential struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PasswordChange is a request to rotate the caller's password.
type PasswordChange struct {
	OldPassword string
	NewPassword string
}

// ValidUsername reports whether s is 5-20 characters of letters, digits, '.'
// and '_', where separators never lead, trail, or appear back to back.
func ValidUsername(s string) bool {
	if len(s) < UsernameMinLen || len(s) > UsernameMaxLen {
		return false
	}
	prevSep := true // a leading separator is rejected like a doubled one
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			prevSep = false
		case c == '.' || c == '_':
			if prevSep {
				return false
			}
			prevSep = true
		default:
			return false
		}
	}
	return !prevSep
}

// ValidPassword reports whether the password is 6-40 characters long.
// Length is counted in runes, matching the request validator.
func ValidPassword(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= PasswordMinLen && n <= PasswordMaxLen
}
