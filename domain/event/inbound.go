package event

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const (
	NameTyping      = "typing"
	NameSendMessage = "send_message"
	NameMarkRead    = "mark_read"
)

// Envelope is the wire frame of every inbound client event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type TypingPayload struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	IsTyping    bool   `json:"is_typing"`
}

type SendMessagePayload struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

type MarkReadPayload struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	SenderID       string `json:"sender_id" validate:"required"`
}

// Decode parses and validates the payload of an inbound envelope into the
// explicit type matching its event name. Unknown names are rejected so that
// nothing loosely shaped reaches the pipeline.
func Decode(env Envelope) (any, error) {
	switch env.Event {
	case NameTyping:
		return decodeAs[TypingPayload](env.Data)
	case NameSendMessage:
		return decodeAs[SendMessagePayload](env.Data)
	case NameMarkRead:
		return decodeAs[MarkReadPayload](env.Data)
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
}

func decodeAs[T any](data json.RawMessage) (T, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("malformed %T payload: %w", payload, err)
	}
	if err := validate.Struct(payload); err != nil {
		return payload, err
	}
	return payload, nil
}
