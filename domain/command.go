package domain

import "time"

// SendMessageCommand is the validated intent to send a direct message.
type SendMessageCommand struct {
	SenderID    string
	RecipientID string
	Content     string
	CreatedAt   time.Time
}

// MarkReadCommand asks to flag every unread message authored by CounterpartID
// in the conversation as read by ReaderID.
type MarkReadCommand struct {
	ReaderID       string
	ConversationID string
	CounterpartID  string
}

// TypingCommand relays a typing indicator to the recipient if reachable.
type TypingCommand struct {
	UserID      string
	RecipientID string
	IsTyping    bool
}
