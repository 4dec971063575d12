package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"hoyhub/backend/internal/db"
	"hoyhub/backend/internal/models"
)

// GeneralContext is the channel context used when no listing is referenced.
const GeneralContext = "general"

// ChannelID builds the deterministic channel identity for two participants
// and a context. Participant IDs are sorted lexicographically so both sides
// converge on the same channel regardless of who initiates.
func ChannelID(participantA, participantB, contextID string) string {
	if contextID == "" {
		contextID = GeneralContext
	}
	ids := []string{participantA, participantB}
	sort.Strings(ids)
	return strings.Join(ids, "_") + "_" + contextID
}

// IChatService defines the interface for 1:1 messaging.
type IChatService interface {
	Open(ctx context.Context, participantA, participantB, contextID string, names map[string]string) (*models.Channel, error)
	Send(ctx context.Context, channelID, senderID, text string) (*models.Message, error)
	History(ctx context.Context, channelID string) ([]models.Message, error)
	ListForParticipant(ctx context.Context, participantID string) ([]models.Channel, error)
	Subscribe(ctx context.Context, channelID string) (<-chan models.Message, func(), error)
}

const (
	chatsCollection    = "chats"
	messagesCollection = "messages"
)

// chatService implements IChatService.
type chatService struct {
	db  *mongo.Database
	rdb *redis.Client
}

// NewChatService creates a new ChatService.
func NewChatService(database *mongo.Database, rdb *redis.Client) IChatService {
	return &chatService{db: database, rdb: rdb}
}

// Open idempotently upserts channel metadata. Safe to call on every open;
// the document ID is the deterministic channel ID.
func (s *chatService) Open(ctx context.Context, participantA, participantB, contextID string, names map[string]string) (*models.Channel, error) {
	if contextID == "" {
		contextID = GeneralContext
	}
	channelID := ChannelID(participantA, participantB, contextID)
	ids := []string{participantA, participantB}
	sort.Strings(ids)

	now := time.Now().UTC()
	filter := bson.M{"_id": channelID}
	update := bson.M{
		"$set": bson.M{
			"participant_ids": ids,
			"context_id":      contextID,
		},
		"$setOnInsert": bson.M{
			"created_at":      now,
			"last_message_at": now,
		},
	}
	if len(names) > 0 {
		update["$set"].(bson.M)["participant_names"] = names
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var channel models.Channel
	err := s.db.Collection(chatsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&channel)
	if err != nil {
		return nil, fmt.Errorf("failed to open channel %s: %w", channelID, err)
	}
	return &channel, nil
}

// Send appends a message to the channel log, then updates the channel's
// last-message preview. The two writes are not transactional: a failure
// between them leaves a stale preview, but the log is the source of truth.
func (s *chatService) Send(ctx context.Context, channelID, senderID, text string) (*models.Message, error) {
	now := time.Now().UTC()
	var msg *models.Message

	operation := func() error {
		msg = &models.Message{
			Base:      models.NewBase(),
			ChannelID: channelID,
			SenderID:  senderID,
			Text:      text,
			SentAt:    now,
		}
		_, insertErr := s.db.Collection(messagesCollection).InsertOne(ctx, msg)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to append message to channel %s: %w", channelID, err)
	}

	// Second write: preview update. Logged but not fatal.
	previewUpdate := bson.M{"$set": bson.M{
		"last_message":    text,
		"last_message_at": now,
	}}
	if _, err := s.db.Collection(chatsCollection).UpdateOne(ctx, bson.M{"_id": channelID}, previewUpdate); err != nil {
		log.Printf("WARNING: message %s stored but channel %s preview update failed: %v", msg.ID.String(), channelID, err)
	}

	// Fan out to live subscribers.
	if s.rdb != nil {
		payload, err := json.Marshal(msg)
		if err == nil {
			if err := s.rdb.Publish(ctx, chatPubSubChannel(channelID), payload).Err(); err != nil {
				log.Printf("WARNING: failed to publish message %s to channel %s: %v", msg.ID.String(), channelID, err)
			}
		}
	}

	return msg, nil
}

// History returns the full message log ordered by server timestamp ascending.
// No pagination: the log is unbounded by design.
func (s *chatService) History(ctx context.Context, channelID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}})
	cursor, err := s.db.Collection(messagesCollection).Find(ctx, bson.M{"channel_id": channelID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for channel %s: %w", channelID, err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode history for channel %s: %w", channelID, err)
	}
	return messages, nil
}

// ListForParticipant returns the channels a participant belongs to, most
// recently active first.
func (s *chatService) ListForParticipant(ctx context.Context, participantID string) ([]models.Channel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})
	cursor, err := s.db.Collection(chatsCollection).Find(ctx, bson.M{"participant_ids": participantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels for %s: %w", participantID, err)
	}
	defer cursor.Close(ctx)

	var channels []models.Channel
	if err = cursor.All(ctx, &channels); err != nil {
		return nil, fmt.Errorf("failed to decode channels for %s: %w", participantID, err)
	}
	return channels, nil
}

// Subscribe delivers live messages for a channel until the returned cancel
// function is called or the context ends. Ordering is whatever order the
// server assigned timestamps at insert; no client-side reordering.
func (s *chatService) Subscribe(ctx context.Context, channelID string) (<-chan models.Message, func(), error) {
	if s.rdb == nil {
		return nil, nil, fmt.Errorf("chat subscriptions require Redis")
	}

	pubsub := s.rdb.Subscribe(ctx, chatPubSubChannel(channelID))
	out := make(chan models.Message, 16)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case redisMsg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var msg models.Message
				if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
					log.Printf("WARNING: dropping undecodable chat message on %s: %v", channelID, err)
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cancel := func() { _ = pubsub.Close() }
	return out, cancel, nil
}

func chatPubSubChannel(channelID string) string {
	return "chat:" + channelID
}
