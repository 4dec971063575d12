package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"hoyhub/backend/internal/config"
)

// Action types recognised in mock email keys. Test drivers fetch the stored
// message by recipient and action.
const (
	actionWelcome        = "welcome"
	actionBookingReceipt = "booking_receipt"
	actionOrderReceipt   = "order_receipt"
	actionUnknown        = "unknown"
)

// RedisSender stores emails in Redis instead of sending them. Used by the
// service API in test runs so the driver can assert on outbound mail.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisSender creates a new RedisSender.
func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{client: client, cfg: cfg}
}

// Send stores a JSON representation of the email under a key derived from the
// primary recipient and the action inferred from the subject line.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	actionType := actionUnknown
	switch {
	case strings.Contains(subject, "Welcome"):
		actionType = actionWelcome
	case strings.Contains(subject, "Booking"):
		actionType = actionBookingReceipt
	case strings.Contains(subject, "Order"):
		actionType = actionOrderReceipt
	}

	primaryTo := ""
	if len(to) > 0 {
		primaryTo = to[0]
	}

	emailData := map[string]interface{}{
		"to":         strings.Join(to, ", "),
		"from":       s.cfg.SmtpFromAddress,
		"subject":    subject,
		"body":       string(rawMessage),
		"sent_at":    time.Now().UTC().Format(time.RFC3339Nano),
		"actionType": actionType,
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	key := fmt.Sprintf("mockemail:%s:%s", primaryTo, actionType)
	ttl := 5 * time.Minute
	if err := s.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
	}

	log.Printf("Mock email stored in Redis key '%s' (To: %s, Subject: %s)", key, strings.Join(to, ", "), subject)
	return nil
}
