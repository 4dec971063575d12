package services

import (
	"context"
	"crypto/rand"
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

// ErrUnknownReferralCode is returned when a redeemed code matches nothing.
var ErrUnknownReferralCode = errors.New("unknown referral code")

// LeaderboardEntry is one row of the referral leaderboard.
type LeaderboardEntry struct {
	UserID utils.SixID `json:"user_id"`
	Code   string      `json:"code"`
	Count  int         `json:"count"`
}

// IReferralService defines the interface for referral codes and counters.
type IReferralService interface {
	EnsureCode(ctx context.Context, userID utils.SixID) (*models.Referral, error)
	Award(ctx context.Context, code string) error
	ForUser(ctx context.Context, userID utils.SixID) (*models.Referral, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

const referralsCollection = "referrals"

// referral codes use the same confusable-free alphabet as record IDs
const referralAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

type referralService struct {
	db *mongo.Database
}

// NewReferralService creates a new ReferralService.
func NewReferralService(database *mongo.Database) IReferralService {
	return &referralService{db: database}
}

// EnsureCode returns the user's referral record, minting a code on first
// call. Code generation retries on collision via the unique index.
func (s *referralService) EnsureCode(ctx context.Context, userID utils.SixID) (*models.Referral, error) {
	existing, err := s.ForUser(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	now := time.Now().UTC()
	var referral *models.Referral
	operation := func() error {
		code, genErr := generateReferralCode(8)
		if genErr != nil {
			return genErr
		}
		referral = &models.Referral{
			Base:      models.NewBase(),
			UserID:    userID,
			Code:      code,
			Count:     0,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, insertErr := s.db.Collection(referralsCollection).InsertOne(ctx, referral)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to mint referral code for %s: %w", userID.String(), err)
	}
	return referral, nil
}

// Award increments the counter behind a redeemed code.
func (s *referralService) Award(ctx context.Context, code string) error {
	update := bson.M{
		"$inc": bson.M{"count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := s.db.Collection(referralsCollection).UpdateOne(ctx, bson.M{"code": code}, update)
	if err != nil {
		return fmt.Errorf("failed to award referral code %s: %w", code, err)
	}
	if result.MatchedCount == 0 {
		return ErrUnknownReferralCode
	}
	return nil
}

func (s *referralService) ForUser(ctx context.Context, userID utils.SixID) (*models.Referral, error) {
	var referral models.Referral
	err := s.db.Collection(referralsCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&referral)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load referral record for %s: %w", userID.String(), err)
	}
	return &referral, nil
}

// Leaderboard returns the top referrers by count descending. Ties keep
// insertion order from the database.
func (s *referralService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "count", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.db.Collection(referralsCollection).Find(ctx, bson.M{"count": bson.M{"$gt": 0}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load referral leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	var referrals []models.Referral
	if err = cursor.All(ctx, &referrals); err != nil {
		return nil, fmt.Errorf("failed to decode referral leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(referrals))
	for _, r := range referrals {
		entries = append(entries, LeaderboardEntry{UserID: r.UserID, Code: r.Code, Count: r.Count})
	}
	return entries, nil
}

func generateReferralCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}
	for i, b := range buf {
		buf[i] = referralAlphabet[int(b)%len(referralAlphabet)]
	}
	return string(buf), nil
}
