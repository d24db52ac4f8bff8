package projection

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shekharshaurya-coder/finalWork/domain"
)

func message(sender, recipient string, at time.Time, readBy ...string) domain.Message {
	return domain.Message{
		ID:             uuid.New(),
		ConversationID: domain.ConversationID(sender, recipient),
		SenderID:       sender,
		RecipientID:    recipient,
		Content:        "hello",
		CreatedAt:      at,
		DeliveredTo:    []string{},
		ReadBy:         readBy,
	}
}

func TestConversations_OneEntryPerConversation(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()

	// Given ten messages spread over two conversations
	var messages []domain.Message
	for i := 0; i < 5; i++ {
		messages = append(messages, message("alice", "bob", at.Add(time.Duration(i)*time.Minute)))
		messages = append(messages, message("clara", "alice", at.Add(time.Duration(i)*time.Second)))
	}

	entries := Conversations("alice", messages)

	// Then exactly one entry per distinct conversation
	req.Len(entries, 2)
	seen := map[string]bool{}
	for _, entry := range entries {
		req.False(seen[entry.ConversationID])
		seen[entry.ConversationID] = true
	}
}

func TestConversations_OrderedByLastActivity(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()

	messages := []domain.Message{
		message("alice", "bob", at),
		message("clara", "alice", at.Add(1*time.Hour)),
		message("dave", "alice", at.Add(30*time.Minute)),
	}

	entries := Conversations("alice", messages)

	req.Len(entries, 3)
	req.Equal("clara", entries[0].CounterpartID)
	req.Equal("dave", entries[1].CounterpartID)
	req.Equal("bob", entries[2].CounterpartID)
}

func TestConversations_UnreadCount(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()

	// Given two unread from bob, one read, and one authored by the viewer
	messages := []domain.Message{
		message("bob", "alice", at),
		message("bob", "alice", at.Add(1*time.Minute)),
		message("bob", "alice", at.Add(2*time.Minute), "alice"),
		message("alice", "bob", at.Add(3*time.Minute)),
	}

	entries := Conversations("alice", messages)

	req.Len(entries, 1)
	req.Equal(2, entries[0].UnreadCount)
	// And the viewer's own message is the freshest preview
	req.Equal("alice", entries[0].LastMessage.SenderID)
}

func TestConversations_TimestampTieBrokenByID(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()

	first := message("bob", "alice", at)
	second := message("bob", "alice", at)

	// Both orders agree on the same winner
	a := Conversations("alice", []domain.Message{first, second})
	b := Conversations("alice", []domain.Message{second, first})

	req.Equal(a[0].LastMessage.ID, b[0].LastMessage.ID)
}

func TestConversations_Empty(t *testing.T) {
	req := require.New(t)
	req.Empty(Conversations("alice", nil))
}
