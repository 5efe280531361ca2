package validator

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxMessageLength = 4000
	maxBioLength     = 500
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func ValidateSignUp(email, password string) ValidationErrors {
	errs := make(ValidationErrors)
	validateEmail(email, errs)
	validatePassword(password, errs)
	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateProfile checks the fields of a profile update. Nil fields are not
// being changed and are skipped.
func ValidateProfile(displayName, bio, career *string) ValidationErrors {
	errs := make(ValidationErrors)

	if displayName != nil {
		name := strings.TrimSpace(*displayName)
		if utf8.RuneCountInString(name) < 2 {
			errs.Add("display_name", "Display name must be at least 2 characters")
		} else if utf8.RuneCountInString(name) > 100 {
			errs.Add("display_name", "Display name is too long")
		}
	}

	if bio != nil && utf8.RuneCountInString(*bio) > maxBioLength {
		errs.Add("bio", fmt.Sprintf("Bio must be at most %d characters", maxBioLength))
	}

	if career != nil && utf8.RuneCountInString(*career) > 100 {
		errs.Add("career", "Career is too long")
	}

	return errs
}

func ValidateMessage(body string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(body) == "" {
		errs.Add("body", "Message is required")
	} else if utf8.RuneCountInString(body) > MaxMessageLength {
		errs.Add("body", fmt.Sprintf("Message must be at most %d characters", MaxMessageLength))
	}

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
