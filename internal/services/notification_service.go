package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"hoyhub/backend/internal/db"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/utils"
)

// ErrNotificationNotFound is returned when a notification does not exist for
// the given user.
var ErrNotificationNotFound = errors.New("notification not found")

// INotificationService defines the interface for in-app notifications.
type INotificationService interface {
	Notify(ctx context.Context, userID utils.SixID, title, body string) (*models.Notification, error)
	ListForUser(ctx context.Context, userID utils.SixID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID utils.SixID) error
	MarkAllRead(ctx context.Context, userID utils.SixID) (int64, error)
}

const notificationsCollection = "notifications"

type notificationService struct {
	db *mongo.Database
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(database *mongo.Database) INotificationService {
	return &notificationService{db: database}
}

func (s *notificationService) Notify(ctx context.Context, userID utils.SixID, title, body string) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	operation := func() error {
		notification.GenID()
		_, err := s.db.Collection(notificationsCollection).InsertOne(ctx, notification)
		return err
	}
	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to notify user %s: %w", userID.String(), err)
	}
	return notification, nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID utils.SixID, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100)
	cursor, err := s.db.Collection(notificationsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for %s: %w", userID.String(), err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications for %s: %w", userID.String(), err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID utils.SixID) error {
	result, err := s.db.Collection(notificationsCollection).UpdateOne(ctx,
		bson.M{"_id": notificationID, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", notificationID.String(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification %s for user %s: %w", notificationID.String(), userID.String(), ErrNotificationNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID utils.SixID) (int64, error) {
	result, err := s.db.Collection(notificationsCollection).UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read for %s: %w", userID.String(), err)
	}
	return result.ModifiedCount, nil
}
