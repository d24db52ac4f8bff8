package runtime

import (
	"context"
	"log/slog"

	"github.com/shekharshaurya-coder/finalWork/contract"
	"github.com/shekharshaurya-coder/finalWork/domain"
	"github.com/shekharshaurya-coder/finalWork/domain/event"
)

// Presence announces online/offline transitions and relays typing state.
// Broadcasts are soft-state and may interleave under concurrent connects;
// the registry stays the sole source of truth and is always queried
// synchronously.
type Presence struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewPresence(log *slog.Logger, registry contract.IRegistry) *Presence {
	return &Presence{log: log, registry: registry}
}

// Connected registers the handle, announces user_online to everyone else and
// sends the newcomer the full online_users snapshot. The evicted handle of a
// replaced connection is returned so the transport can close it.
func (p *Presence) Connected(ctx context.Context, userID string, sink contract.EventSink) (contract.EventSink, bool) {
	previous, replaced := p.registry.Register(userID, sink)

	p.broadcastExcept(ctx, userID, event.UserOnline{UserID: userID})

	if err := sink.Consume(ctx, event.OnlineUsers{UserIDs: p.registry.Snapshot()}); err != nil {
		p.log.Debug("Online snapshot lost", "user_id", userID, "error", err)
	}

	p.log.Info("User connected", "user_id", userID, "replaced", replaced)
	return previous, replaced
}

// Disconnected removes the handle (stale disconnects are ignored by the
// registry guard) and announces user_offline.
func (p *Presence) Disconnected(ctx context.Context, userID string, sink contract.EventSink) {
	if !p.registry.Unregister(userID, sink) {
		p.log.Debug("Stale disconnect ignored", "user_id", userID)
		return
	}

	p.broadcastExcept(ctx, userID, event.UserOffline{UserID: userID})
	p.log.Info("User disconnected", "user_id", userID)
}

// Typing relays a typing indicator to the recipient's connection if present.
func (p *Presence) Typing(ctx context.Context, cmd domain.TypingCommand) {
	sink, ok := p.registry.Lookup(cmd.RecipientID)
	if !ok {
		return
	}
	if err := sink.Consume(ctx, event.UserTyping{UserID: cmd.UserID, IsTyping: cmd.IsTyping}); err != nil {
		p.log.Debug("Typing event lost", "recipient_id", cmd.RecipientID, "error", err)
	}
}

func (p *Presence) broadcastExcept(ctx context.Context, exceptID string, e event.Event) {
	for _, userID := range p.registry.Snapshot() {
		if userID == exceptID {
			continue
		}
		sink, ok := p.registry.Lookup(userID)
		if !ok {
			continue
		}
		if err := sink.Consume(ctx, e); err != nil {
			p.log.Debug("Presence broadcast lost", "user_id", userID, "event", e.Name(), "error", err)
		}
	}
}
