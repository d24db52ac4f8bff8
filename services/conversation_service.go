//go:generate go run go.uber.org/mock/mockgen -source=conversation_service.go -destination=../mocks/mock_conversation_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/shekharshaurya-coder/finalWork/domain"
	"github.com/shekharshaurya-coder/finalWork/projection"
	"github.com/shekharshaurya-coder/finalWork/repositories"
)

type IConversationService interface {
	ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error)
	GetConversation(ctx context.Context, userID, counterpart string) (domain.User, []domain.Message, error)
}

// ConversationService is the read model over the persisted message log.
// Listing is read-only; fetching a conversation marks the counterpart's
// unread messages as read through the receipt propagator.
type ConversationService struct {
	log      *slog.Logger
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
	receipts IReceiptService
}

func NewConversationService(log *slog.Logger,
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	receipts IReceiptService) *ConversationService {
	return &ConversationService{log: log, messages: messages, users: users, receipts: receipts}
}

// ListConversations returns one entry per distinct conversation the user
// takes part in, newest activity first, with last-message preview and the
// viewer's unread count. Unread state is computed from ReadBy alone and is
// independent of DeliveredTo.
func (s *ConversationService) ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	messages, err := s.messages.FindByParticipant(userID)
	if err != nil {
		return nil, fmt.Errorf("scanning message log failed: %w", err)
	}

	entries := projection.Conversations(userID, messages)
	return lo.Map(entries, func(entry projection.Entry, _ int) domain.ConversationSummary {
		return domain.ConversationSummary{
			ConversationID: entry.ConversationID,
			Counterpart:    s.resolveCounterpart(entry.CounterpartID),
			LastMessage:    entry.LastMessage,
			LastActivityAt: entry.LastMessage.CreatedAt,
			UnreadCount:    entry.UnreadCount,
		}
	}), nil
}

// GetConversation resolves the counterpart (username first, id as fallback),
// marks their unread messages as read for the viewer, and returns the full
// history oldest first.
func (s *ConversationService) GetConversation(ctx context.Context, userID, counterpart string) (domain.User, []domain.Message, error) {
	account, err := s.users.GetUserByUsername(counterpart)
	if err != nil {
		if account, err = s.users.GetUserByID(counterpart); err != nil {
			return domain.User{}, nil, err
		}
	}

	conversationID := domain.ConversationID(userID, account.ID)

	// Viewing the conversation is the second read-receipt entry point; the
	// flags are flipped before the scan so the returned history reflects them.
	if _, err := s.receipts.MarkRead(ctx, domain.MarkReadCommand{
		ReaderID:       userID,
		ConversationID: conversationID,
		CounterpartID:  account.ID,
	}); err != nil {
		// Non-fatal: history stays servable, flags keep their prior state.
		s.log.Warn("Marking conversation read failed", "conversation_id", conversationID, "error", err)
	}

	messages, err := s.messages.FindByConversation(conversationID)
	if err != nil {
		return domain.User{}, nil, fmt.Errorf("loading conversation failed: %w", err)
	}

	return account.ToIdentity(), messages, nil
}

// resolveCounterpart degrades to a bare id when the account is gone.
func (s *ConversationService) resolveCounterpart(userID string) domain.User {
	account, err := s.users.GetUserByID(userID)
	if err != nil {
		s.log.Debug("Counterpart resolution failed", "user_id", userID)
		return domain.User{ID: userID}
	}
	return account.ToIdentity()
}
