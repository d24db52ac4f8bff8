// Package event defines the tagged payloads exchanged over a live connection.
// One explicit type per event name; nothing loosely shaped crosses this
// boundary.
package event

import (
	"github.com/google/uuid"

	"github.com/shekharshaurya-coder/finalWork/domain"
)

// Event is any outbound payload pushed to a live connection.
type Event interface {
	Name() string
}

const (
	NameUserOnline       = "user_online"
	NameUserOffline      = "user_offline"
	NameOnlineUsers      = "online_users"
	NameUserTyping       = "user_typing"
	NameMessageSent      = "message_sent"
	NameNewMessage       = "new_message"
	NameMessageDelivered = "message_delivered"
	NameMessagesRead     = "messages_read"
	NameMessageError     = "message_error"
)

type UserOnline struct {
	UserID string `json:"user_id"`
}

func (UserOnline) Name() string { return NameUserOnline }

type UserOffline struct {
	UserID string `json:"user_id"`
}

func (UserOffline) Name() string { return NameUserOffline }

// OnlineUsers is the full presence snapshot sent to a freshly registered
// connection.
type OnlineUsers struct {
	UserIDs []string `json:"user_ids"`
}

func (OnlineUsers) Name() string { return NameOnlineUsers }

type UserTyping struct {
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}

func (UserTyping) Name() string { return NameUserTyping }

// MessageSent acknowledges a persisted message to its sender. Emitting it
// depends only on persistence, never on live delivery.
type MessageSent struct {
	Message domain.Message `json:"message"`
}

func (MessageSent) Name() string { return NameMessageSent }

// NewMessage is the live push of a message to its recipient.
type NewMessage struct {
	Message domain.Message `json:"message"`
}

func (NewMessage) Name() string { return NameNewMessage }

type MessageDelivered struct {
	MessageID uuid.UUID `json:"message_id"`
}

func (MessageDelivered) Name() string { return NameMessageDelivered }

// MessagesRead notifies the author that ReadBy has observed every message of
// the conversation so far.
type MessagesRead struct {
	ConversationID string `json:"conversation_id"`
	ReadBy         string `json:"read_by"`
}

func (MessagesRead) Name() string { return NameMessagesRead }

type MessageError struct {
	Error string `json:"error"`
}

func (MessageError) Name() string { return NameMessageError }
