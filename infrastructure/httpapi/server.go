package httpapi

import (
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shekharshaurya-coder/finalWork/domain"
	"github.com/shekharshaurya-coder/finalWork/errors"
	"github.com/shekharshaurya-coder/finalWork/repositories"
	"github.com/shekharshaurya-coder/finalWork/services"
)

const defaultSearchLimit = 20

// Server is the REST surface next to the websocket: account lifecycle and
// the pull-based read model. Everything live goes over the socket.
type Server struct {
	log           *slog.Logger
	auth          services.IAuthService
	messages      services.IMessageService
	conversations services.IConversationService
	index         *repositories.MessageIndex
}

func NewServer(log *slog.Logger,
	auth services.IAuthService,
	messages services.IMessageService,
	conversations services.IConversationService,
	index *repositories.MessageIndex) *Server {
	return &Server{
		log:           log,
		auth:          auth,
		messages:      messages,
		conversations: conversations,
		index:         index,
	}
}

// Routes mounts every endpoint on a fresh mux. Authenticated routes are
// wrapped by the bearer middleware.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("GET /api/conversations", s.authenticated(s.handleListConversations))
	mux.Handle("GET /api/conversations/{username}/messages", s.authenticated(s.handleGetConversation))
	mux.Handle("POST /api/messages", s.authenticated(s.handleSendMessage))
	mux.Handle("GET /api/messages/search", s.authenticated(s.handleSearch))

	return mux
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	token, err := s.auth.Register(req.Username, req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	token, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	summaries, err := s.conversations.ListConversations(r.Context(), identity.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if summaries == nil {
		summaries = []domain.ConversationSummary{}
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

type conversationResponse struct {
	Counterpart domain.User      `json:"counterpart"`
	Messages    []domain.Message `json:"messages"`
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	counterpart, messages, err := s.conversations.GetConversation(r.Context(), identity.ID, r.PathValue("username"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	s.writeJSON(w, http.StatusOK, conversationResponse{Counterpart: counterpart, Messages: messages})
}

type sendMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	message, err := s.messages.Send(r.Context(), domain.SendMessageCommand{
		SenderID:    identity.ID,
		RecipientID: req.RecipientID,
		Content:     req.Content,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, message)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	terms := r.URL.Query().Get("q")
	if terms == "" {
		s.writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	hits, err := s.index.Search(r.Context(), identity.ID, terms, limit)
	if err != nil {
		s.log.Error("Search failed", "user_id", identity.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if hits == nil {
		hits = []repositories.SearchHit{}
	}
	s.writeJSON(w, http.StatusOK, hits)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Debug("Writing response failed", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps sentinel errors onto HTTP statuses. Anything
// unrecognized is a 500 with a neutral body.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case goerrors.Is(err, errors.ErrInvalidCredentials),
		goerrors.Is(err, errors.ErrUnauthenticated):
		s.writeError(w, http.StatusUnauthorized, err.Error())
	case goerrors.Is(err, errors.ErrUserAlreadyExists):
		s.writeError(w, http.StatusConflict, err.Error())
	case goerrors.Is(err, errors.ErrInvalidPassword),
		goerrors.Is(err, errors.ErrEmptyMessage),
		goerrors.Is(err, errors.ErrMessageTooLong):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case goerrors.Is(err, errors.ErrRecipientNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error("Request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
