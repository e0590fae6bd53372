package domain

import (
	"strings"
	"testing"
)

func TestValidPassword_CountsCharacters(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"ascii min", "abcdef", true},
		{"ascii too short", "abcde", false},
		{"ascii max", strings.Repeat("x", PasswordMaxLen), true},
		{"ascii too long", strings.Repeat("x", PasswordMaxLen+1), false},
		{"cyrillic 23 chars 44 bytes", "пароль-надежный-длинный", true},
		{"cyrillic max", strings.Repeat("ж", PasswordMaxLen), true},
		{"cyrillic too long", strings.Repeat("ж", PasswordMaxLen+1), false},
		{"three runes six bytes", "жжж", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPassword(tt.password); got != tt.want {
				t.Fatalf("ValidPassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestValidUsername(t *testing.T) {
	valid := []string{"alice", "bob.smith", "user_01", "a.b_c.d"}
	invalid := []string{"abcd", "_alice", "alice.", "al..ice", "al._ice", "al ice", "алиса", strings.Repeat("a", UsernameMaxLen+1)}

	for _, u := range valid {
		if !ValidUsername(u) {
			t.Fatalf("%q should be valid", u)
		}
	}
	for _, u := range invalid {
		if ValidUsername(u) {
			t.Fatalf("%q should be invalid", u)
		}
	}
}
