package manychat

import (
	"fmt"
	"strconv"
)

// PayloadBuilder shapes the request body for one ManyChat sending endpoint.
type PayloadBuilder interface {
	Build(subscriberID, text string) any
}

type TextMessage struct {
	Text string `json:"text"`
}

// SendMessagePayload is the body of /fb/sending/sendMessage.
type SendMessagePayload struct {
	SubscriberID any         `json:"subscriber_id"`
	Message      TextMessage `json:"message"`
}

type SendMessageBuilder struct{}

func (SendMessageBuilder) Build(subscriberID, text string) any {
	return SendMessagePayload{
		SubscriberID: subscriberIDValue(subscriberID),
		Message:      TextMessage{Text: text},
	}
}

type ContentMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Content struct {
	Messages []ContentMessage `json:"messages"`
}

type ContentData struct {
	Version string  `json:"version"`
	Content Content `json:"content"`
}

// SendContentPayload is the body of /fb/sending/sendContent (dynamic block v2).
type SendContentPayload struct {
	SubscriberID any         `json:"subscriber_id"`
	Data         ContentData `json:"data"`
	MessageTag   string      `json:"message_tag,omitempty"`
}

type SendContentBuilder struct {
	MessageTag string
}

func (b SendContentBuilder) Build(subscriberID, text string) any {
	return SendContentPayload{
		SubscriberID: subscriberIDValue(subscriberID),
		Data: ContentData{
			Version: "v2",
			Content: Content{
				Messages: []ContentMessage{{Type: "text", Text: text}},
			},
		},
		MessageTag: b.MessageTag,
	}
}

// BuilderFor resolves MANYCHAT_PAYLOAD.
func BuilderFor(name, messageTag string) (PayloadBuilder, error) {
	switch name {
	case "", "sendMessage":
		return SendMessageBuilder{}, nil
	case "sendContent":
		return SendContentBuilder{MessageTag: messageTag}, nil
	}
	return nil, fmt.Errorf("manychat: unknown payload builder %q", name)
}

// ManyChat ids are numeric; send them as numbers when they are.
func subscriberIDValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

type SendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
