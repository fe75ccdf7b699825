package accounts

import (
	"net/mail"
	"strings"
)

// ValidationError carries the first failing rule as a human-readable
// message suitable for direct display. It is never fatal.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErr(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// RegistrationInput is everything the sign-up screen collects.
type RegistrationInput struct {
	Username    string
	Password    string
	FullName    string
	Email       string
	PhoneNumber string
	DateOfBirth string
	AcceptedToS bool
}

const minPasswordLength = 8

// validateRegistration checks the rules in order and returns the first
// failure: all fields present, well-formed email, minimum password length,
// Terms of Service accepted. Username uniqueness is checked separately
// against the repository.
func validateRegistration(in RegistrationInput) *ValidationError {
	fields := []struct {
		name  string
		value string
	}{
		{"username", in.Username},
		{"password", in.Password},
		{"fullName", in.FullName},
		{"email", in.Email},
		{"phoneNumber", in.PhoneNumber},
		{"dateOfBirth", in.DateOfBirth},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return validationErr(f.name, "Please fill in all fields.")
		}
	}

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return validationErr("email", "Please enter a valid email address.")
	}

	if len(in.Password) < minPasswordLength {
		return validationErr("password", "Password must be at least 8 characters long.")
	}

	if !in.AcceptedToS {
		return validationErr("acceptedToS", "You must accept the Terms of Service.")
	}

	return nil
}
