package service

import (
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength is the shortest accepted password, counted in characters.
const MinPasswordLength = 6

// Password rule messages, reported together when several rules fail.
const (
	MsgPasswordTooShort  = "Password must be at least 6 characters"
	MsgPasswordNoUpper   = "Password must contain at least one capital letter"
	MsgPasswordNoDigit   = "Password must contain at least one number"
	MsgPasswordNoSpecial = "Password must contain at least one special character"
)

// CheckPasswordPolicy returns every rule password violates, or nil when it is acceptable.
func CheckPasswordPolicy(password string) []string {
	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}
	var violations []string
	if utf8.RuneCountInString(password) < MinPasswordLength {
		violations = append(violations, MsgPasswordTooShort)
	}
	if !hasUpper {
		violations = append(violations, MsgPasswordNoUpper)
	}
	if !hasDigit {
		violations = append(violations, MsgPasswordNoDigit)
	}
	if !hasSpecial {
		violations = append(violations, MsgPasswordNoSpecial)
	}
	return violations
}
