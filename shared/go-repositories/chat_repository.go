package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrUnsafeParticipant = errors.New("participant id cannot be used as a field name")

type ChatRepository interface {
	// Send stores msg and updates the conversation header in one commit,
	// creating the conversation on first use.
	Send(ctx context.Context, msg *models.ChatMessage, recipientID string) error
	MarkRead(ctx context.Context, conversationID, userID string) error

	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context, participantID string) ([]*models.Conversation, error)
	ListMessages(ctx context.Context, conversationID string, limit int64) ([]*models.ChatMessage, error)
}

type chatRepo struct {
	conversations baseRepo[models.Conversation]
	messages      baseRepo[models.ChatMessage]
	client        *mongo.Client
}

func NewChatRepository(db *mongo.Database) ChatRepository {
	return &chatRepo{
		conversations: newBaseRepo[models.Conversation](db, CollConversations),
		messages:      newBaseRepo[models.ChatMessage](db, CollMessages),
		client:        db.Client(),
	}
}

func (r *chatRepo) Send(ctx context.Context, msg *models.ChatMessage, recipientID string) error {
	if !safeKey(msg.SenderID) || !safeKey(recipientID) {
		return ErrUnsafeParticipant
	}

	preview := msg.Text
	if preview == "" {
		preview = "Attachment"
	}

	return RunInTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.messages.coll.InsertOne(sc, msg); err != nil {
			return err
		}
		_, err := r.conversations.coll.UpdateOne(sc,
			bson.M{"_id": msg.ConversationID},
			bson.M{
				"$setOnInsert": bson.M{
					"created_at": msg.Timestamp,
					"unread_count." + msg.SenderID: int64(0),
				},
				"$addToSet": bson.M{"participants": bson.M{"$each": bson.A{msg.SenderID, recipientID}}},
				"$set": bson.M{
					"last_message": models.LastMessage{
						Text:      preview,
						SenderID:  msg.SenderID,
						Timestamp: msg.Timestamp,
					},
					"updated_at": msg.Timestamp,
				},
				"$inc": bson.M{"unread_count." + recipientID: int64(1)},
			},
			options.Update().SetUpsert(true),
		)
		return err
	})
}

func (r *chatRepo) MarkRead(ctx context.Context, conversationID, userID string) error {
	if !safeKey(userID) {
		return ErrUnsafeParticipant
	}
	return RunInTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if err := updateOne(sc, r.conversations.coll, conversationID, bson.M{
			"$set": bson.M{"unread_count." + userID: int64(0)},
		}); err != nil {
			return err
		}
		_, err := r.messages.coll.UpdateMany(sc,
			bson.M{"conversation_id": conversationID, "sender_id": bson.M{"$ne": userID}, "read": false},
			bson.M{"$set": bson.M{"read": true}},
		)
		return err
	})
}

func (r *chatRepo) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	return r.conversations.getByID(ctx, id)
}

func (r *chatRepo) ListConversations(ctx context.Context, participantID string) ([]*models.Conversation, error) {
	return r.conversations.find(ctx,
		bson.M{"participants": participantID},
		newestFirst("updated_at", utils.MaxListScan),
	)
}

func (r *chatRepo) ListMessages(ctx context.Context, conversationID string, limit int64) ([]*models.ChatMessage, error) {
	// Newest window, returned oldest first for display.
	msgs, err := r.messages.find(ctx,
		bson.M{"conversation_id": conversationID},
		newestFirst("timestamp", limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
