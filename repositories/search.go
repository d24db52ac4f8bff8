package repositories

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"

	"github.com/shekharshaurya-coder/finalWork/domain"
)

// SearchHit is one full-text match over the message log.
type SearchHit struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// MessageIndex maintains a Bluge full-text index over message content.
// Indexing is best-effort: the durable log in Badger stays the source of
// truth and an index failure never fails a send.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Index makes a message findable by both participants.
func (s *MessageIndex) Index(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("content", message.Content).StoreValue()).
		AddField(bluge.NewKeywordField("conversation", message.ConversationID).StoreValue()).
		AddField(bluge.NewKeywordField("participant", message.SenderID)).
		AddField(bluge.NewKeywordField("participant", message.RecipientID))
	return s.writer.Update(doc.ID(), doc)
}

// Search returns the best matches for terms among the messages the user is a
// participant of, most relevant first.
func (s *MessageIndex) Search(ctx context.Context, userID, terms string, limit int) ([]SearchHit, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Debug("Closing index reader failed", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content")).
		AddMust(bluge.NewTermQuery(userID).SetField("participant"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit SearchHit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "conversation":
				hit.ConversationID = string(value)
			case "content":
				hit.Content = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}
