package usecase

import (
	"strings"

	"github.com/xavierca1/astroservice/internal/entity"
)

// IntakeInput is the webhook body. ManyChat flows were built over time
// with different names for the contact id, all of them are accepted.
type IntakeInput struct {
	ExternalID   string `json:"external_id"`
	MCUserID     string `json:"mc_user_id"`
	SubscriberID string `json:"subscriber_id"`
	FirstName    string `json:"first_name"`
	BirthDate    string `json:"birth_date"`
	BirthTime    string `json:"birth_time"`
	BirthPlace   string `json:"birth_place"`
	Email        string `json:"email"`
}

func (in IntakeInput) ToLead() entity.Lead {
	id := firstNonEmpty(in.ExternalID, in.MCUserID, in.SubscriberID)
	return entity.Lead{
		ExternalID: id,
		FirstName:  strings.TrimSpace(in.FirstName),
		BirthDate:  in.BirthDate,
		BirthTime:  in.BirthTime,
		BirthPlace: in.BirthPlace,
		Email:      strings.TrimSpace(in.Email),
	}
}

type IntakeOutput struct {
	Status     string   `json:"status"`
	RequestID  string   `json:"request_id"`
	Preview    string   `json:"preview"`
	LoveTop3   []string `json:"love_top3"`
	CareerTop3 []string `json:"career_top3"`
	HealthTop3 []string `json:"health_top3"`

	Sent          bool   `json:"sent"`
	Channel       string `json:"channel"`
	SkippedReason string `json:"skipped_reason,omitempty"`

	ManyChat *entity.DeliveryOutcome `json:"manychat,omitempty"`
	SMTP     *entity.DeliveryOutcome `json:"smtp,omitempty"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
