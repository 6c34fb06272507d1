package usecase

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/xavierca1/astroservice/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateLead checks the fields that are validated regardless of channel.
// Birth data is free text and is passed to the evaluator as is.
func ValidateLead(lead entity.Lead) []ValidationError {
	var errors []ValidationError

	if len(lead.FirstName) > 200 {
		errors = append(errors, ValidationError{"first_name", "must not exceed 200 characters"})
	}

	if lead.Email != "" {
		if _, err := mail.ParseAddress(lead.Email); err != nil || !isBareAddress(lead.Email) {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	if len(lead.ExternalID) > 128 {
		errors = append(errors, ValidationError{"external_id", "must not exceed 128 characters"})
	}

	return errors
}

// isBareAddress rejects "Name <a@b>" forms: the field must hold only the
// address.
func isBareAddress(email string) bool {
	return !strings.ContainsAny(email, "<> ")
}
