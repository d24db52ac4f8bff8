package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/shekharshaurya-coder/finalWork/domain"
	"github.com/shekharshaurya-coder/finalWork/domain/event"
	"github.com/shekharshaurya-coder/finalWork/errors"
	"github.com/shekharshaurya-coder/finalWork/moderation"
	"github.com/shekharshaurya-coder/finalWork/repositories"
	"github.com/shekharshaurya-coder/finalWork/runtime"
)

// fakeSink records every consumed event; shared by the service tests.
type fakeSink struct {
	mu     sync.Mutex
	events []event.Event
	fail   bool
}

func (s *fakeSink) Consume(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.ErrDeliveryFailed
	}
	s.events = append(s.events, e)
	return nil
}

func (s *fakeSink) Events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Event(nil), s.events...)
}

func (s *fakeSink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.events))
	for _, e := range s.events {
		names = append(names, e.Name())
	}
	return names
}

type fixture struct {
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
	registry *runtime.Registry
	offline  chan domain.Message
	service  *MessageService
	aliceID  string
	bobID    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.DiscardHandler)
	messages := repositories.NewMessageRepository(db, log)
	users := repositories.NewUserRepository(db)
	registry := runtime.NewRegistry()
	offline := make(chan domain.Message, 10)

	moderator, err := moderation.NewModerator([]string{"swearword"}, '*')
	req.NoError(err)

	aliceID, err := users.CreateUser("alice", "alice@example.com", "hashed")
	req.NoError(err)
	bobID, err := users.CreateUser("bob", "bob@example.com", "hashed")
	req.NoError(err)

	service := NewMessageService(log, messages, users, nil, registry, &moderator, offline, 500)

	return &fixture{
		messages: messages,
		users:    users,
		registry: registry,
		offline:  offline,
		service:  service,
		aliceID:  aliceID,
		bobID:    bobID,
	}
}

func TestMessageService_Send_Offline_Recipient(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// When alice sends to an offline bob
	message, err := f.service.Send(context.Background(), domain.SendMessageCommand{
		SenderID:    f.aliceID,
		RecipientID: f.bobID,
		Content:     "hello bob",
	})

	// Then the message is persisted in SENT state, flags empty
	req.NoError(err)
	req.Empty(message.DeliveredTo)
	req.Empty(message.ReadBy)

	stored, err := f.messages.FindByConversation(message.ConversationID)
	req.NoError(err)
	req.Len(stored, 1)
	req.Empty(stored[0].DeliveredTo)

	// And the offline notification hook fired
	select {
	case missed := <-f.offline:
		req.Equal(message.ID, missed.ID)
	default:
		req.Fail("offline hook should have received the message")
	}
}

func TestMessageService_Send_Online_Recipient_Marks_Delivered(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	aliceSink := &fakeSink{}
	bobSink := &fakeSink{}
	f.registry.Register(f.aliceID, aliceSink)
	f.registry.Register(f.bobID, bobSink)

	message, err := f.service.Send(context.Background(), domain.SendMessageCommand{
		SenderID:    f.aliceID,
		RecipientID: f.bobID,
		Content:     "hello bob",
	})
	req.NoError(err)

	// Then bob's connection received the push
	req.Contains(bobSink.Names(), event.NameNewMessage)

	// And the stored message carries the delivered flag
	stored, err := f.messages.FindByConversation(message.ConversationID)
	req.NoError(err)
	req.Equal([]string{f.bobID}, stored[0].DeliveredTo)

	// And alice saw sent before delivered on her own connection
	names := aliceSink.Names()
	req.Equal([]string{event.NameMessageSent, event.NameMessageDelivered}, names)

	// And nothing hit the offline hook
	select {
	case <-f.offline:
		req.Fail("offline hook must stay silent for an online recipient")
	default:
	}
}

func TestMessageService_Send_Empty_Content_Rejected(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	_, err := f.service.Send(context.Background(), domain.SendMessageCommand{
		SenderID:    f.aliceID,
		RecipientID: f.bobID,
		Content:     "   \n\t  ",
	})

	req.ErrorIs(err, errors.ErrEmptyMessage)

	// Nothing was persisted
	stored, err := f.messages.FindByParticipant(f.aliceID)
	req.NoError(err)
	req.Empty(stored)
}

func TestMessageService_Send_Too_Long_Rejected(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	_, err := f.service.Send(context.Background(), domain.SendMessageCommand{
		SenderID:    f.aliceID,
		RecipientID: f.bobID,
		Content:     strings.Repeat("a", 501),
	})

	req.ErrorIs(err, errors.ErrMessageTooLong)
}

func TestMessageService_Send_Unknown_Recipient_Rejected(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	_, err := f.service.Send(context.Background(), domain.SendMessageCommand{
		SenderID:    f.aliceID,
		RecipientID: "ghost",
		Content:     "anyone there?",
	})

	req.ErrorIs(err, errors.ErrRecipientNotFound)

	stored, findErr := f.messages.FindByParticipant(f.aliceID)
	req.NoError(findErr)
	req.Empty(stored)
}

func TestMessageService_Send_Push_Failure_Is_Not_Fatal(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// Given bob's connection rejects every push (full buffer)
	f.registry.Register(f.bobID, &fakeSink{fail: true})

	message, err := f.service.Send(context.Background(), domain.SendMessageCommand{
		SenderID:    f.aliceID,
		RecipientID: f.bobID,
		Content:     "hello bob",
	})

	// Then the send still succeeds and the message stays in SENT state
	req.NoError(err)
	stored, err := f.messages.FindByConversation(message.ConversationID)
	req.NoError(err)
	req.Empty(stored[0].DeliveredTo)
}

func TestMessageService_Send_Censors_Content(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	message, err := f.service.Send(context.Background(), domain.SendMessageCommand{
		SenderID:    f.aliceID,
		RecipientID: f.bobID,
		Content:     "what a swearword this is",
	})

	req.NoError(err)
	req.Equal("what a ********* this is", message.Content)

	// The censored form is what got persisted
	stored, err := f.messages.FindByConversation(message.ConversationID)
	req.NoError(err)
	req.NotContains(stored[0].Content, "swearword")
}
