// Package validation holds the jellydator/validation rules shared by the config,
// user and API key inputs.
package validation

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// permissionRegex matches "domain:action" strings such as "content:write".
	permissionRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*:[a-z][a-z0-9-]*$`)
)

// WrapValidationError turns a validation failure into an ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PasswordStrength is the password policy applied to new users.
type PasswordStrength struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

type characterClass struct {
	required bool
	matches  func(rune) bool
	code     string
	message  string
}

// Validate reports the first requirement the password misses.
func (p PasswordStrength) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}
	if len(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			"password must be at least "+strconv.Itoa(p.MinLength)+" characters",
		)
	}

	classes := []characterClass{
		{p.RequireUpper, unicode.IsUpper, "validation_password_uppercase", "an uppercase letter"},
		{p.RequireLower, unicode.IsLower, "validation_password_lowercase", "a lowercase letter"},
		{p.RequireNumber, unicode.IsNumber, "validation_password_number", "a number"},
		{p.RequireSpecial, isSpecial, "validation_password_special", "a special character"},
	}
	for _, class := range classes {
		if class.required && !strings.ContainsFunc(s, class.matches) {
			return validation.NewError(class.code, "password must contain at least one "+class.message)
		}
	}
	return nil
}

func isSpecial(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func stringRule(code, message string, valid func(string) bool) validation.StringRule {
	return validation.NewStringRuleWithError(valid, validation.NewError(code, message))
}

// Email checks the address shape only; deliverability is not verified.
var Email = stringRule("validation_email_format", "must be a valid email address", emailRegex.MatchString)

// NoWhitespace rejects leading or trailing whitespace.
var NoWhitespace = stringRule(
	"validation_no_whitespace",
	"must not contain leading or trailing whitespace",
	func(s string) bool { return s == strings.TrimSpace(s) },
)

// NotBlank rejects strings that are empty after trimming.
var NotBlank = stringRule(
	"validation_not_blank",
	"must not be blank",
	func(s string) bool { return strings.TrimSpace(s) != "" },
)

// Permission validates the "domain:action" format.
var Permission = stringRule(
	"validation_permission_format",
	"must be a permission in domain:action format",
	permissionRegex.MatchString,
)

// Base64 validates standard base64. Empty strings pass; combine with Required.
var Base64 = stringRule(
	"validation_base64",
	"must be valid base64-encoded data",
	func(s string) bool {
		_, err := base64.StdEncoding.DecodeString(s)
		return err == nil
	},
)
