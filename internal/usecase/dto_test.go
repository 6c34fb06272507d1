package usecase

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestIntakeInputToLead(t *testing.T) {
	t.Run("external_id wins", func(t *testing.T) {
		lead := IntakeInput{ExternalID: "a", MCUserID: "b", SubscriberID: "c"}.ToLead()
		assert.Equal(t, "a", lead.ExternalID)
	})

	t.Run("mc_user_id alias", func(t *testing.T) {
		lead := IntakeInput{MCUserID: " b ", Email: " anna@example.com "}.ToLead()
		assert.Equal(t, "b", lead.ExternalID)
		assert.Equal(t, "anna@example.com", lead.Email)
	})

	t.Run("subscriber_id alias", func(t *testing.T) {
		lead := IntakeInput{SubscriberID: "c", BirthPlace: "Linz"}.ToLead()
		assert.Equal(t, "c", lead.ExternalID)
		assert.Equal(t, "Linz", lead.BirthPlace)
	})
}
