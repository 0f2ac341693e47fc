package auth

import (
	"regexp"
	"strings"
)

var emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)

// FieldErrors maps form fields to their validation message.
type FieldErrors map[string]string

// Validate applies the sign-up form rules and returns every failing field.
func (r SignUpRequest) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(r.FirstName) == "" {
		errs["firstName"] = "First name is required"
	}
	if strings.TrimSpace(r.LastName) == "" {
		errs["lastName"] = "Last name is required"
	}

	switch {
	case strings.TrimSpace(r.Email) == "":
		errs["email"] = "Email is required"
	case !emailShape.MatchString(r.Email):
		errs["email"] = "Email is invalid"
	}

	switch {
	case r.Password == "":
		errs["password"] = "Password is required"
	case len(r.Password) < 8:
		errs["password"] = "Password must be at least 8 characters"
	case !hasUpperLowerDigit(r.Password):
		errs["password"] = "Password must contain uppercase, lowercase, and number"
	}

	if r.Password != r.ConfirmPassword {
		errs["confirmPassword"] = "Passwords do not match"
	}
	if !r.AgreeToTerms {
		errs["agreeToTerms"] = "You must agree to the terms and conditions"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// DisplayName joins first and last name.
func (r SignUpRequest) DisplayName() string {
	return strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName)
}

func hasUpperLowerDigit(pw string) bool {
	var upper, lower, digit bool
	for _, c := range pw {
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

var strengthLabels = [...]string{"Very Weak", "Weak", "Fair", "Good", "Strong", "Very Strong"}

// Strength scores a password from 0 to 5 with its label.
type Strength struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

// PasswordStrength awards one point each for length >= 8, an uppercase
// letter, a lowercase letter, a digit and any other character.
func PasswordStrength(pw string) Strength {
	if pw == "" {
		return Strength{}
	}
	var upper, lower, digit, other bool
	for _, c := range pw {
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			other = true
		}
	}
	score := 0
	for _, ok := range []bool{len(pw) >= 8, upper, lower, digit, other} {
		if ok {
			score++
		}
	}
	return Strength{Score: score, Label: strengthLabels[score]}
}
