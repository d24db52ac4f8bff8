package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shekharshaurya-coder/finalWork/contract"
	"github.com/shekharshaurya-coder/finalWork/domain"
	"github.com/shekharshaurya-coder/finalWork/domain/event"
	"github.com/shekharshaurya-coder/finalWork/runtime"
	"github.com/shekharshaurya-coder/finalWork/services"
)

// Server upgrades authenticated clients to a websocket, registers them with
// presence and pumps inbound envelopes into the pipeline. One read loop and
// one write pump per connection; events from a single connection are applied
// in arrival order because the read loop is sequential.
type Server struct {
	log          *slog.Logger
	verifier     contract.IVerifier
	presence     *runtime.Presence
	messages     services.IMessageService
	receipts     services.IReceiptService
	upgrader     websocket.Upgrader
	bufferSize   int
	writeTimeout time.Duration
}

func NewServer(log *slog.Logger,
	verifier contract.IVerifier,
	presence *runtime.Presence,
	messages services.IMessageService,
	receipts services.IReceiptService,
	bufferSize int,
	writeTimeout time.Duration) *Server {
	return &Server{
		log:      log,
		verifier: verifier,
		presence: presence,
		messages: messages,
		receipts: receipts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is not checked here: auth is the query token, and
			// browser-facing deployments must enforce origins at the gateway
			// in front of this server.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
	}
}

// ServeHTTP handles GET /ws?token=<jwt>. The token is verified before the
// upgrade: a failed handshake touches no registry state and broadcasts
// nothing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	identity, err := s.verifier.Verify(token)
	if err != nil {
		http.Error(w, "invalid or missing token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "user_id", identity.ID, "error", err)
		return
	}

	s.handle(r.Context(), conn, identity)
}

func (s *Server) handle(ctx context.Context, conn *websocket.Conn, identity domain.User) {
	sink := NewSink(s.bufferSize, s.writeTimeout)
	go sink.Run(conn)

	evicted, replaced := s.presence.Connected(ctx, identity.ID, sink)
	if replaced {
		// The older connection is superseded; closing its sink makes its
		// pump exit and its pending Consume calls fail fast.
		if old, ok := evicted.(*Sink); ok {
			old.Close()
		}
	}

	defer func() {
		s.presence.Disconnected(ctx, identity.ID, sink)
		sink.Close()
		_ = conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("Connection closed abnormally", "user_id", identity.ID, "error", err)
			}
			return
		}

		var env event.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.reject(ctx, sink, "malformed envelope")
			continue
		}

		payload, err := event.Decode(env)
		if err != nil {
			s.reject(ctx, sink, err.Error())
			continue
		}

		s.dispatch(ctx, identity, sink, payload)
	}
}

func (s *Server) dispatch(ctx context.Context, identity domain.User, sink *Sink, payload any) {
	switch p := payload.(type) {
	case event.TypingPayload:
		s.presence.Typing(ctx, domain.TypingCommand{
			UserID:      identity.ID,
			RecipientID: p.RecipientID,
			IsTyping:    p.IsTyping,
		})

	case event.SendMessagePayload:
		if _, err := s.messages.Send(ctx, domain.SendMessageCommand{
			SenderID:    identity.ID,
			RecipientID: p.RecipientID,
			Content:     p.Content,
		}); err != nil {
			s.reject(ctx, sink, err.Error())
		}

	case event.MarkReadPayload:
		if _, err := s.receipts.MarkRead(ctx, domain.MarkReadCommand{
			ReaderID:       identity.ID,
			ConversationID: p.ConversationID,
			CounterpartID:  p.SenderID,
		}); err != nil {
			s.reject(ctx, sink, err.Error())
		}

	default:
		s.reject(ctx, sink, "unsupported event")
	}
}

// reject reports a failed inbound event back on the same connection without
// tearing it down.
func (s *Server) reject(ctx context.Context, sink *Sink, reason string) {
	if err := sink.Consume(ctx, event.MessageError{Error: reason}); err != nil {
		s.log.Debug("Error event lost", "reason", reason, "error", err)
	}
}
