package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_SendMessage(t *testing.T) {
	req := require.New(t)
	env := Envelope{
		Event: NameSendMessage,
		Data:  json.RawMessage(`{"recipient_id":"bob","content":"hello"}`),
	}

	payload, err := Decode(env)

	req.NoError(err)
	req.Equal(SendMessagePayload{RecipientID: "bob", Content: "hello"}, payload)
}

func TestDecode_MarkRead(t *testing.T) {
	req := require.New(t)
	env := Envelope{
		Event: NameMarkRead,
		Data:  json.RawMessage(`{"conversation_id":"alice_bob","sender_id":"alice"}`),
	}

	payload, err := Decode(env)

	req.NoError(err)
	req.Equal(MarkReadPayload{ConversationID: "alice_bob", SenderID: "alice"}, payload)
}

func TestDecode_UnknownEvent(t *testing.T) {
	req := require.New(t)
	env := Envelope{Event: "teleport", Data: json.RawMessage(`{}`)}

	_, err := Decode(env)

	req.Error(err)
	req.Contains(err.Error(), "unknown event")
}

func TestDecode_MissingRequiredField(t *testing.T) {
	req := require.New(t)
	env := Envelope{
		Event: NameSendMessage,
		Data:  json.RawMessage(`{"content":"hello"}`),
	}

	// Then validation rejects a payload without recipient
	_, err := Decode(env)
	req.Error(err)
}

func TestDecode_MalformedJSON(t *testing.T) {
	req := require.New(t)
	env := Envelope{Event: NameTyping, Data: json.RawMessage(`{`)}

	_, err := Decode(env)
	req.Error(err)
}
