package domain

import (
	"sort"
	"strings"
	"time"
)

// conversationSeparator joins the sorted participant pair into the canonical id.
const conversationSeparator = "_"

// ConversationID derives the canonical conversation id from two participant
// ids. The pair is sorted first, so ConversationID(a, b) == ConversationID(b, a).
func ConversationID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, conversationSeparator)
}

// ConversationSummary is one entry of the conversation-list read model:
// the counterpart, the most recent message and the viewer's unread count.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	Counterpart    User      `json:"counterpart"`
	LastMessage    Message   `json:"last_message"`
	LastActivityAt time.Time `json:"last_activity_at"`
	UnreadCount    int       `json:"unread_count"`
}
