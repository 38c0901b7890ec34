package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxTitleLen    = 255
	MaxFullNameLen = 255
	MaxEmailLen    = 255
)

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrTitleTooLong     = fmt.Errorf("title must be at most %d characters", MaxTitleLen)
	ErrEmailInvalid     = errors.New("email is invalid")
	ErrFullNameRequired = errors.New("full name is required")
	ErrFullNameTooLong  = fmt.Errorf("full name must be at most %d characters", MaxFullNameLen)
)

// validator counts runes for min/max on strings.
var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeTitle trims surrounding whitespace, composes the text to NFC and
// checks the length bounds.
func NormalizeTitle(title string) (string, error) {
	title = norm.NFC.String(strings.TrimSpace(title))
	if err := validate.Var(title, "required"); err != nil {
		return "", ErrTitleRequired
	}
	if err := validate.Var(title, fmt.Sprintf("max=%d", MaxTitleLen)); err != nil {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// NormalizeEmail trims and lower-cases the address and checks its format.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, fmt.Sprintf("required,email,max=%d", MaxEmailLen)); err != nil {
		return "", ErrEmailInvalid
	}
	return email, nil
}

func NormalizeFullName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if err := validate.Var(name, "required"); err != nil {
		return "", ErrFullNameRequired
	}
	if err := validate.Var(name, fmt.Sprintf("max=%d", MaxFullNameLen)); err != nil {
		return "", ErrFullNameTooLong
	}
	return name, nil
}
