//go:generate go run go.uber.org/mock/mockgen -source=receipt_service.go -destination=../mocks/mock_receipt_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shekharshaurya-coder/finalWork/contract"
	"github.com/shekharshaurya-coder/finalWork/domain"
	"github.com/shekharshaurya-coder/finalWork/domain/event"
	"github.com/shekharshaurya-coder/finalWork/repositories"
)

type IReceiptService interface {
	MarkRead(ctx context.Context, cmd domain.MarkReadCommand) (int, error)
}

// ReceiptService flips read flags and propagates read receipts. Both entry
// points (explicit mark_read and the conversation view) converge here, so a
// transition is notified exactly once.
type ReceiptService struct {
	log      *slog.Logger
	messages repositories.IMessageRepository
	registry contract.IRegistry
}

func NewReceiptService(log *slog.Logger, messages repositories.IMessageRepository,
	registry contract.IRegistry) *ReceiptService {
	return &ReceiptService{log: log, messages: messages, registry: registry}
}

// MarkRead appends the reader to every not-yet-read message authored by the
// counterpart in the conversation and returns the transition count.
// Idempotent: a repeated call with nothing newly eligible returns zero and
// emits no notification. Only a participant may flip read flags: the named
// conversation must be the reader↔counterpart pair.
func (s *ReceiptService) MarkRead(ctx context.Context, cmd domain.MarkReadCommand) (int, error) {
	if cmd.ConversationID != domain.ConversationID(cmd.ReaderID, cmd.CounterpartID) {
		s.log.Warn("Read receipt rejected, reader is not a participant",
			"conversation_id", cmd.ConversationID,
			"reader_id", cmd.ReaderID)
		return 0, nil
	}

	transitioned, err := s.messages.MarkRead(cmd.ConversationID, cmd.CounterpartID, cmd.ReaderID)
	if err != nil {
		return 0, fmt.Errorf("read flag update failed: %w", err)
	}
	if transitioned == 0 {
		return 0, nil
	}

	if sink, ok := s.registry.Lookup(cmd.CounterpartID); ok {
		receipt := event.MessagesRead{
			ConversationID: cmd.ConversationID,
			ReadBy:         cmd.ReaderID,
		}
		if err := sink.Consume(ctx, receipt); err != nil {
			s.log.Debug("Read receipt lost", "conversation_id", cmd.ConversationID, "error", err)
		}
	}

	return transitioned, nil
}
