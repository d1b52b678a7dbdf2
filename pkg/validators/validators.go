package validators

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	phonePattern    = regexp.MustCompile(`^(\+254|0)[17]\d{8}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	idNumberPattern = regexp.MustCompile(`^\d{8}$`)
	mpesaPattern    = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	customIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-]{3,}$`)
)

// ValidPhoneNumber checks a Kenyan phone number (+254 or 0 prefix)
func ValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidEmail checks an email address format
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidIDNumber checks a national ID number (8 digits)
func ValidIDNumber(idNumber string) bool {
	return idNumberPattern.MatchString(idNumber)
}

// ValidMpesaReference checks an MPESA payment reference (10 alphanumerics)
func ValidMpesaReference(reference string) bool {
	return mpesaPattern.MatchString(strings.ToUpper(reference))
}

// ValidCustomID checks a caller-assigned entity id (letters, digits, dashes)
func ValidCustomID(customID string) bool {
	return customIDPattern.MatchString(customID)
}

// ValidPassword enforces the password policy: minimum 8 characters with at
// least one uppercase letter, one lowercase letter and one digit
func ValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// Sanitize trims surrounding whitespace from string fields, recursing into
// maps and slices
func Sanitize(data interface{}) interface{} {
	switch v := data.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]interface{}:
		for k, val := range v {
			v[k] = Sanitize(val)
		}
		return v
	case []interface{}:
		for i, val := range v {
			v[i] = Sanitize(val)
		}
		return v
	}
	return data
}
