package validation

import (
	"regexp"
	"strings"
	"unicode"

	"edge/pkg/models"

	"github.com/gofiber/fiber/v2"
)

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateRegistration checks a registration payload and returns the first
// violation found. The messages are part of the public API contract.
func ValidateRegistration(req models.RegisterRequest) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if err := ValidateUsername(req.Username); err != nil {
		return err
	}
	return ValidatePassword(req.Password)
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Email is required")
	}
	if !emailRegexp.MatchString(email) {
		return fiber.NewError(fiber.StatusBadRequest, "Email must be a valid email address")
	}
	return nil
}

func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Username is required")
	}
	if len(username) < 3 {
		return fiber.NewError(fiber.StatusBadRequest, "Username must be at least 3 characters")
	}
	if len(username) > 30 {
		return fiber.NewError(fiber.StatusBadRequest, "Username must be at most 30 characters")
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return fiber.NewError(fiber.StatusBadRequest, "Username can only contain letters, numbers, _ and -")
		}
	}
	return nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Password is required")
	}
	if len(password) < 8 {
		return fiber.NewError(fiber.StatusBadRequest, "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return fiber.NewError(fiber.StatusBadRequest, "Password must be at most 128 characters")
	}
	return nil
}
