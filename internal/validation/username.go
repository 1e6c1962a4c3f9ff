package validation

import (
	"net/mail"
	"regexp"
	"strings"
)

// UsernamePattern: латиница, цифры и "_", от 3 до 32 символов
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// mobilePattern допускает необязательный "+" и 10-15 цифр
var mobilePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
	MinPasswordLen = 8
)

// ValidateUsername reports the first rule the username breaks.
func ValidateUsername(username string) error {
	switch n := len(username); {
	case n == 0:
		return fieldErr("username", "cannot be empty")
	case n < MinUsernameLen:
		return fieldErr("username", "must be at least %d characters long", MinUsernameLen)
	case n > MaxUsernameLen:
		return fieldErr("username", "must not exceed %d characters", MaxUsernameLen)
	case !UsernamePattern.MatchString(username):
		return fieldErr("username", "can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}
	return nil
}

// ValidatePassword only checks length; strength is up to the user.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return fieldErr("password", "cannot be empty")
	case len(password) < MinPasswordLen:
		return fieldErr("password", "must be at least %d characters long", MinPasswordLen)
	}
	return nil
}

// ValidateEmail checks that email is a bare address without a display name.
func ValidateEmail(email string) error {
	if email == "" {
		return fieldErr("email", "cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		return fieldErr("email", "is not a valid address")
	}
	return nil
}

// ValidateMobile checks an optional mobile number; empty is allowed.
func ValidateMobile(mobile string) error {
	if mobile == "" {
		return nil
	}
	if !mobilePattern.MatchString(mobile) {
		return fieldErr("mobile", "must contain 10 to 15 digits")
	}
	return nil
}
