package entity

import "strings"

// DefaultSalutation é usado quando o lead chega sem first_name.
const DefaultSalutation = "du"

type Lead struct {
	ExternalID string `json:"external_id,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	BirthDate  string `json:"birth_date"`
	BirthTime  string `json:"birth_time"`
	BirthPlace string `json:"birth_place"`
	Email      string `json:"email,omitempty"`
}

func (l Lead) DisplayName() string {
	name := strings.TrimSpace(l.FirstName)
	if name == "" {
		return DefaultSalutation
	}
	return name
}
