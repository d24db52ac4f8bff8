package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/shekharshaurya-coder/finalWork/domain"
	"github.com/shekharshaurya-coder/finalWork/errors"
	"github.com/shekharshaurya-coder/finalWork/runtime"
)

// tokenVerifier accepts tokens of the form "user:<id>" and rejects the rest.
type tokenVerifier struct{}

func (tokenVerifier) Verify(token string) (domain.User, error) {
	id, found := strings.CutPrefix(token, "user:")
	if !found {
		return domain.User{}, errors.ErrUnauthenticated
	}
	return domain.User{ID: id, Username: id}, nil
}

func newTestServer(t *testing.T, registry *runtime.Registry) *httptest.Server {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	presence := runtime.NewPresence(log, registry)
	server := NewServer(log, tokenVerifier{}, presence, nil, nil, 16, time.Second)

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServer_Rejects_Invalid_Token_Before_Registration(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	ts := newTestServer(t, registry)

	resp, err := http.Get(ts.URL + "?token=garbage")
	req.NoError(err)
	defer resp.Body.Close()

	// Then the handshake fails with 401 and no registry state was touched
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	req.Empty(registry.Snapshot())
}

func TestServer_Registers_And_Sends_Presence_Snapshot(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	ts := newTestServer(t, registry)

	conn := dial(t, ts, "user:alice")

	// The first frame on a fresh connection is the online_users snapshot
	req.NoError(conn.SetReadDeadline(time.Now().Add(time.Second)))
	var received struct {
		Event string `json:"event"`
		Data  struct {
			UserIDs []string `json:"user_ids"`
		} `json:"data"`
	}
	req.NoError(conn.ReadJSON(&received))
	req.Equal("online_users", received.Event)
	req.Equal([]string{"alice"}, received.Data.UserIDs)
	req.True(registry.IsOnline("alice"))
}

func TestServer_Unknown_Inbound_Event_Gets_Error_Frame(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	ts := newTestServer(t, registry)

	conn := dial(t, ts, "user:alice")
	req.NoError(conn.SetReadDeadline(time.Now().Add(time.Second)))

	// Skip the snapshot frame
	var skip json.RawMessage
	req.NoError(conn.ReadJSON(&skip))

	// When an unknown event is sent
	req.NoError(conn.WriteJSON(map[string]any{"event": "teleport", "data": map[string]any{}}))

	// Then the same connection gets a message_error frame and stays open
	var received struct {
		Event string `json:"event"`
	}
	req.NoError(conn.ReadJSON(&received))
	req.Equal("message_error", received.Event)
	req.True(registry.IsOnline("alice"))
}

func TestServer_Typing_Relayed_Between_Connections(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	ts := newTestServer(t, registry)

	alice := dial(t, ts, "user:alice")
	bob := dial(t, ts, "user:bob")

	req.NoError(alice.SetReadDeadline(time.Now().Add(time.Second)))
	req.NoError(bob.SetReadDeadline(time.Now().Add(time.Second)))

	// Drain bob's snapshot
	var skip json.RawMessage
	req.NoError(bob.ReadJSON(&skip))

	// When alice reports typing to bob
	req.NoError(alice.WriteJSON(map[string]any{
		"event": "typing",
		"data":  map[string]any{"recipient_id": "bob", "is_typing": true},
	}))

	var received struct {
		Event string `json:"event"`
		Data  struct {
			UserID   string `json:"user_id"`
			IsTyping bool   `json:"is_typing"`
		} `json:"data"`
	}
	req.NoError(bob.ReadJSON(&received))
	req.Equal("user_typing", received.Event)
	req.Equal("alice", received.Data.UserID)
	req.True(received.Data.IsTyping)
}

func TestServer_Disconnect_Clears_Presence(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	ts := newTestServer(t, registry)

	conn := dial(t, ts, "user:alice")
	req.Eventually(func() bool { return registry.IsOnline("alice") },
		time.Second, 10*time.Millisecond)

	req.NoError(conn.Close())

	req.Eventually(func() bool { return !registry.IsOnline("alice") },
		time.Second, 10*time.Millisecond)
}
