// Package domain contains core concepts of the messaging system.
// This file defines Message and its delivery lifecycle rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a one-to-one chat message. Its lifecycle is
// CREATED -> optionally DELIVERED, independently -> optionally READ.
// DeliveredTo and ReadBy only ever grow and never contain the sender.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	RecipientID    string    `json:"recipient_id"`
	Content        string    `json:"content"`
	Lang           string    `json:"lang,omitempty"` // ISO 639-1, detected at send time
	CreatedAt      time.Time `json:"created_at"`
	DeliveredTo    []string  `json:"delivered_to"`
	ReadBy         []string  `json:"read_by"`
}

// DeliveredFor reports whether the message was pushed live to userID.
func (m Message) DeliveredFor(userID string) bool {
	return contains(m.DeliveredTo, userID)
}

// ReadFor reports whether userID has observed the message.
func (m Message) ReadFor(userID string) bool {
	return contains(m.ReadBy, userID)
}

// UnreadFor reports whether the message counts as unread for a viewer.
// A user's own messages are never unread for them.
func (m Message) UnreadFor(userID string) bool {
	return m.SenderID != userID && !m.ReadFor(userID)
}

// CounterpartOf returns the other participant of the message for a viewer.
func (m Message) CounterpartOf(userID string) string {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

func contains(set []string, id string) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}
