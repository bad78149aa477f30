package application

import (
	"strings"
	"unicode"
)

const minPasswordLength = 8

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "passw0rd": {},
	"12345678": {}, "123456789": {}, "1234567890": {}, "11111111": {},
	"qwerty123": {}, "qwertyuiop": {}, "iloveyou": {}, "letmein1": {},
	"welcome1": {}, "admin123": {}, "abc12345": {}, "sunshine": {},
}

// checkPassword returns a message describing the first policy violation,
// or "" when the password is acceptable.
func checkPassword(username, password string) string {
	if len(password) < minPasswordLength {
		return "must be at least 8 characters long"
	}
	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return "cannot be entirely numeric"
	}
	lower := strings.ToLower(password)
	if u := strings.ToLower(username); u != "" && strings.Contains(lower, u) {
		return "is too similar to the username"
	}
	if _, ok := commonPasswords[lower]; ok {
		return "is too common"
	}
	return ""
}
