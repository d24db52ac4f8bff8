//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"github.com/shekharshaurya-coder/finalWork/contract"
	"github.com/shekharshaurya-coder/finalWork/domain"
	"github.com/shekharshaurya-coder/finalWork/domain/event"
	"github.com/shekharshaurya-coder/finalWork/errors"
	"github.com/shekharshaurya-coder/finalWork/moderation"
	"github.com/shekharshaurya-coder/finalWork/repositories"
)

type IMessageService interface {
	Send(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
}

// MessageService is the send pipeline: validate, resolve the recipient,
// censor, persist, acknowledge, then attempt live delivery. Persistence is
// the durable source of truth; everything after it is best-effort.
type MessageService struct {
	log              *slog.Logger
	messages         repositories.IMessageRepository
	users            repositories.IUserRepository
	index            *repositories.MessageIndex
	registry         contract.IRegistry
	moderator        *moderation.Moderator
	offline          chan<- domain.Message
	maxContentLength int
}

func NewMessageService(log *slog.Logger,
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	index *repositories.MessageIndex,
	registry contract.IRegistry,
	moderator *moderation.Moderator,
	offline chan<- domain.Message,
	maxContentLength int) *MessageService {
	return &MessageService{
		log:              log,
		messages:         messages,
		users:            users,
		index:            index,
		registry:         registry,
		moderator:        moderator,
		offline:          offline,
		maxContentLength: maxContentLength,
	}
}

// Send runs the full pipeline. The returned message is the persisted SENT
// state; it is valid even when live delivery subsequently fails, and the
// caller may acknowledge the sender with it. Validation and resolution
// failures abort before any write.
func (s *MessageService) Send(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	content := strings.TrimSpace(cmd.Content)
	if content == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > s.maxContentLength {
		return domain.Message{}, errors.ErrMessageTooLong
	}

	recipient, err := s.users.GetUserByID(cmd.RecipientID)
	if err != nil {
		return domain.Message{}, errors.ErrRecipientNotFound
	}

	censored, foundWords := s.moderator.Censor(content)
	if len(foundWords) > 0 {
		s.log.Info("Message censored", "sender_id", cmd.SenderID, "words", len(foundWords))
	}
	info := whatlanggo.Detect(censored)

	createdAt := cmd.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	message := domain.Message{
		ID:             uuid.New(),
		ConversationID: domain.ConversationID(cmd.SenderID, recipient.ID),
		SenderID:       cmd.SenderID,
		RecipientID:    recipient.ID,
		Content:        censored,
		Lang:           info.Lang.Iso6391(),
		CreatedAt:      createdAt,
		DeliveredTo:    []string{},
		ReadBy:         []string{},
	}

	if err := s.messages.StoreMessage(message); err != nil {
		return domain.Message{}, fmt.Errorf("persisting message failed: %w", err)
	}

	if s.index != nil {
		if err := s.index.Index(message); err != nil {
			s.log.Warn("Indexing message failed", "message_id", message.ID, "error", err)
		}
	}

	// The persisted write is the SENT ack; the sender's connection learns
	// about it before any delivery outcome.
	s.ackSender(ctx, message)
	s.deliver(ctx, message)

	return message, nil
}

func (s *MessageService) ackSender(ctx context.Context, message domain.Message) {
	sink, ok := s.registry.Lookup(message.SenderID)
	if !ok {
		return
	}
	if err := sink.Consume(ctx, event.MessageSent{Message: message}); err != nil {
		s.log.Debug("Sent ack lost", "message_id", message.ID, "error", err)
	}
}

// deliver attempts the live push. An unreachable recipient fires the offline
// notification hook and leaves the message in SENT state; no retry is
// performed. A failed push after persistence is a transient delivery failure:
// logged, never surfaced, DeliveredTo untouched.
func (s *MessageService) deliver(ctx context.Context, message domain.Message) {
	sink, ok := s.registry.Lookup(message.RecipientID)
	if !ok {
		select {
		case s.offline <- message:
		default:
			s.log.Warn("Offline notification hook full, dropping", "message_id", message.ID)
		}
		return
	}

	if err := sink.Consume(ctx, event.NewMessage{Message: message}); err != nil {
		s.log.Debug("Live delivery failed",
			"message_id", message.ID,
			"recipient_id", message.RecipientID,
			"error", errors.ErrDeliveryFailed)
		return
	}

	// Optimistic: delivered as soon as the recipient's buffer accepted the
	// push. A flag-update failure is non-fatal; the message stays SENT.
	if err := s.messages.MarkDelivered(message, message.RecipientID); err != nil {
		s.log.Warn("Delivered flag update failed", "message_id", message.ID, "error", err)
		return
	}

	if senderSink, ok := s.registry.Lookup(message.SenderID); ok {
		if err := senderSink.Consume(ctx, event.MessageDelivered{MessageID: message.ID}); err != nil {
			s.log.Debug("Delivered event lost", "message_id", message.ID, "error", err)
		}
	}
}
