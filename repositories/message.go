//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/shekharshaurya-coder/finalWork/domain"
)

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	FindByConversation(conversationID string) ([]domain.Message, error)
	FindByParticipant(userID string) ([]domain.Message, error)
	MarkDelivered(message domain.Message, recipientID string) error
	MarkRead(conversationID, authorID, readerID string) (int, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// messageKey builds the storage key "msg:{conversation}:{timestamp_padded}:{uuid}".
// The 19-digit zero padding makes lexicographical order chronological; the
// UUID disambiguates two messages landing on the same nanosecond. The key is
// fully derivable from the message fields, so flag updates never need a
// secondary lookup.
func messageKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		m.ConversationID,
		m.CreatedAt.UnixNano(),
		m.ID,
	))
}

func conversationPrefix(conversationID string) []byte {
	return []byte(fmt.Sprintf("msg:%s:", conversationID))
}

// participantKey indexes a conversation under one of its participants so that
// the conversation list never scans the whole message log.
func participantKey(userID, conversationID string) []byte {
	return []byte(fmt.Sprintf("conv:%s:%s", userID, conversationID))
}

// StoreMessage persists a message and indexes its conversation for both
// participants in a single transaction.
func (m MessageRepository) StoreMessage(message domain.Message) error {
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(message), bytes); err != nil {
			return err
		}
		if err := txn.Set(participantKey(message.SenderID, message.ConversationID), nil); err != nil {
			return err
		}
		return txn.Set(participantKey(message.RecipientID, message.ConversationID), nil)
	})
}

// FindByConversation returns every message of a conversation, oldest first.
// The padded timestamp in the key makes a forward prefix scan chronological.
func (m MessageRepository) FindByConversation(conversationID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		messages, err = scanConversation(txn, conversationID)
		return err
	})
	return messages, err
}

// FindByParticipant returns every message of every conversation the user
// takes part in, by walking the participant index first.
func (m MessageRepository) FindByParticipant(userID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("conv:%s:", userID))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)

		var conversationIDs []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			conversationIDs = append(conversationIDs, strings.TrimPrefix(key, string(prefix)))
		}
		it.Close()

		for _, conversationID := range conversationIDs {
			batch, err := scanConversation(txn, conversationID)
			if err != nil {
				return err
			}
			messages = append(messages, batch...)
		}
		return nil
	})
	return messages, err
}

// MarkDelivered appends the recipient to the message's DeliveredTo set.
// Idempotent; the sender is never added to its own message's sets.
func (m MessageRepository) MarkDelivered(message domain.Message, recipientID string) error {
	if recipientID == message.SenderID {
		return nil
	}
	key := messageKey(message)
	return m.db.Update(func(txn *badger.Txn) error {
		stored, err := readMessage(txn, key)
		if err != nil {
			return err
		}
		if stored.DeliveredFor(recipientID) {
			return nil
		}
		stored.DeliveredTo = append(stored.DeliveredTo, recipientID)
		return writeMessage(txn, key, stored)
	})
}

// MarkRead appends readerID to ReadBy on every message of the conversation
// authored by authorID that the reader has not observed yet, in a single
// transaction. Returns the number of messages transitioned, which is zero on
// a repeated call with nothing newly eligible.
func (m MessageRepository) MarkRead(conversationID, authorID, readerID string) (int, error) {
	if authorID == readerID {
		return 0, nil
	}
	transitioned := 0
	err := m.db.Update(func(txn *badger.Txn) error {
		transitioned = 0
		prefix := conversationPrefix(conversationID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		type pending struct {
			key   []byte
			value domain.Message
		}
		var updates []pending
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var message domain.Message
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &message)
			})
			if err != nil {
				return err
			}
			if message.SenderID != authorID || message.ReadFor(readerID) {
				continue
			}
			message.ReadBy = append(message.ReadBy, readerID)
			updates = append(updates, pending{key: item.KeyCopy(nil), value: message})
		}

		for _, u := range updates {
			if err := writeMessage(txn, u.key, u.value); err != nil {
				return err
			}
		}
		transitioned = len(updates)
		return nil
	})
	return transitioned, err
}

func scanConversation(txn *badger.Txn, conversationID string) ([]domain.Message, error) {
	var messages []domain.Message
	prefix := conversationPrefix(conversationID)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var message domain.Message
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &message)
		})
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func readMessage(txn *badger.Txn, key []byte) (domain.Message, error) {
	item, err := txn.Get(key)
	if err != nil {
		return domain.Message{}, err
	}
	var message domain.Message
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &message)
	})
	return message, err
}

func writeMessage(txn *badger.Txn, key []byte, message domain.Message) error {
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return txn.Set(key, bytes)
}
