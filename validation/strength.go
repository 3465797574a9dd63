package validation

import (
	"strings"
	"unicode"
)

// Strength levels
const (
	StrengthVeryWeak = "Very Weak"
	StrengthWeak     = "Weak"
	StrengthMedium   = "Medium"
	StrengthStrong   = "Strong"
)

// Strength is a local password strength estimate.
type Strength struct {
	Score   int             `json:"score"`
	Level   string          `json:"strength"`
	Message string          `json:"message"`
	Checks  map[string]bool `json:"checks"`
}

// PasswordStrength scores password one point each for length, lowercase,
// uppercase, digit and special character.
func PasswordStrength(password string) Strength {
	if password == "" {
		return Strength{Level: StrengthVeryWeak, Message: "Password is required"}
	}

	checks := map[string]bool{
		"length":    len([]rune(password)) >= passwordMinLength,
		"lowercase": strings.IndexFunc(password, isASCIILower) >= 0,
		"uppercase": strings.IndexFunc(password, isASCIIUpper) >= 0,
		"numbers":   strings.IndexFunc(password, unicode.IsDigit) >= 0,
		"special":   strings.ContainsAny(password, specialChars),
	}

	score := 0
	for _, ok := range checks {
		if ok {
			score++
		}
	}

	s := Strength{Score: score, Checks: checks}
	switch {
	case score <= 2:
		s.Level, s.Message = StrengthVeryWeak, "Password is too weak. Add more characters and variety."
	case score == 3:
		s.Level, s.Message = StrengthWeak, "Password is weak. Add more character types."
	case score == 4:
		s.Level, s.Message = StrengthMedium, "Password is okay but could be stronger."
	default:
		s.Level, s.Message = StrengthStrong, "Password is strong!"
	}
	return s
}

func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
