package models

import (
	"time"

	"hoyhub/backend/internal/utils"
)

// Referral tracks how many signups a user's referral code has produced.
// Count is a plain counter incremented per redeemed signup.
type Referral struct {
	Base      `bson:",inline"`
	UserID    utils.SixID `bson:"user_id" json:"user_id"`
	Code      string      `bson:"code" json:"code"`
	Count     int         `bson:"count" json:"count"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}

// City is a selectable city for search filters.
type City struct {
	Base    `bson:",inline"`
	Name    string `bson:"name" json:"name"`
	Country string `bson:"country" json:"country"`
	Active  bool   `bson:"active" json:"active"`
}
