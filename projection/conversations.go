// Package projection builds read models from the persisted message log.
// Pure aggregation: no storage access, no event emission.
package projection

import (
	"sort"

	"github.com/shekharshaurya-coder/finalWork/domain"
)

// Entry is one aggregated conversation before identity resolution.
type Entry struct {
	ConversationID string
	CounterpartID  string
	LastMessage    domain.Message
	UnreadCount    int
}

// Conversations groups a user's messages into exactly one entry per distinct
// conversation id, keeping the most recent message per group and counting the
// messages still unread for the viewer. Entries come back ordered by
// last-message timestamp descending; equal timestamps are broken by message
// id so the order is stable.
func Conversations(viewerID string, messages []domain.Message) []Entry {
	groups := make(map[string]*Entry)

	for _, message := range messages {
		entry, ok := groups[message.ConversationID]
		if !ok {
			entry = &Entry{
				ConversationID: message.ConversationID,
				CounterpartID:  message.CounterpartOf(viewerID),
				LastMessage:    message,
			}
			groups[message.ConversationID] = entry
		} else if newerThan(message, entry.LastMessage) {
			entry.LastMessage = message
		}

		if message.UnreadFor(viewerID) {
			entry.UnreadCount++
		}
	}

	entries := make([]Entry, 0, len(groups))
	for _, entry := range groups {
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return newerThan(entries[i].LastMessage, entries[j].LastMessage)
	})
	return entries
}

func newerThan(a, b domain.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}
