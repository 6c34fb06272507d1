package handlers

import (
	"net/http"

	"github.com/xavierca1/astroservice/internal/usecase"
)

type TestResponse struct {
	Status       string `json:"status"`
	Note         string `json:"note"`
	SubscriberID string `json:"subscriber_id"`
	Text         string `json:"text"`
	Tag          string `json:"tag,omitempty"`
}

// HandleTest echoes the query back for wiring checks from a ManyChat flow.
// It never sends anything.
func HandleTest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	subscriberID := q.Get("subscriber_id")
	if subscriberID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: usecase.CodeValidation, Message: "subscriber_id: is required"})
		return
	}
	text := q.Get("text")
	if text == "" {
		text = "Test"
	}
	writeJSON(w, http.StatusOK, TestResponse{
		Status:       "ok",
		Note:         "Test-Endpoint – Nachrichten werden hier nicht gesendet.",
		SubscriberID: subscriberID,
		Text:         text,
		Tag:          q.Get("tag"),
	})
}
