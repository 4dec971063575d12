package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"hoyhub/backend/internal/config"
	"hoyhub/backend/internal/db"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/utils"
)

// OrderResult pairs the stored order with the WhatsApp handoff link the
// client redirects to.
type OrderResult struct {
	Order        *models.Order `json:"order"`
	WhatsAppLink string        `json:"whatsapp_link"`
}

// IOrderService defines the interface for purchase-intent orders.
type IOrderService interface {
	Create(ctx context.Context, order *models.Order) (*OrderResult, error)
	ListForUser(ctx context.Context, userID utils.SixID) ([]models.Order, error)
}

const ordersCollection = "orders"

type orderService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewOrderService creates a new OrderService.
func NewOrderService(database *mongo.Database, cfg *config.Config) IOrderService {
	return &orderService{db: database, cfg: cfg}
}

// Create records the purchase intent, then builds the wa.me deep link.
// Payment itself never touches the platform; the link carries a prefilled
// message so the operator can reconcile against the order document.
func (s *orderService) Create(ctx context.Context, order *models.Order) (*OrderResult, error) {
	order.CreatedAt = time.Now().UTC()

	operation := func() error {
		order.GenID()
		_, err := s.db.Collection(ordersCollection).InsertOne(ctx, order)
		return err
	}
	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to record order for user %s: %w", order.UserID.String(), err)
	}

	return &OrderResult{
		Order:        order,
		WhatsAppLink: s.whatsAppLink(order),
	}, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID utils.SixID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(ordersCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for %s: %w", userID.String(), err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders for %s: %w", userID.String(), err)
	}
	return orders, nil
}

func (s *orderService) whatsAppLink(order *models.Order) string {
	text := fmt.Sprintf("Hello, I would like to pay for order %s.\nItem: %s\nAmount: $%.2f\nName: %s",
		order.ID.String(), order.Description, order.Amount, order.BuyerName)
	return fmt.Sprintf("https://wa.me/%s?text=%s", s.cfg.WhatsAppNumber, url.QueryEscape(text))
}
