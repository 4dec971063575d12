package models

import (
	"time"

	"hoyhub/backend/internal/plan"
	"hoyhub/backend/internal/utils"
)

// Role determines which owner profile (if any) accompanies a user document.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleHotel    Role = "hotel"
)

// User represents an account in the system.
type User struct {
	Base         `bson:",inline"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string    `bson:"password" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	PlanTier     plan.Tier `bson:"plan_tier" json:"plan_tier"`
	IsAdmin      bool      `bson:"is_admin" json:"is_admin"`
	PhotoURL     string    `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	ReferralCode string    `bson:"referral_code,omitempty" json:"referral_code,omitempty"`
	ReferredBy   string    `bson:"referred_by,omitempty" json:"referred_by,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// AgentProfile is the public-facing profile for a real estate agent.
// Created alongside the user document as a second, independent write.
type AgentProfile struct {
	Base          `bson:",inline"`
	UserID        utils.SixID `bson:"user_id" json:"user_id"`
	AgencyName    string      `bson:"agency_name" json:"agency_name"`
	Bio           string      `bson:"bio,omitempty" json:"bio,omitempty"`
	City          string      `bson:"city" json:"city"`
	WhatsApp      string      `bson:"whatsapp,omitempty" json:"whatsapp,omitempty"`
	PhotoURL      string      `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	CoverURL      string      `bson:"cover_url,omitempty" json:"cover_url,omitempty"`
	ServiceAreas  []string    `bson:"service_areas,omitempty" json:"service_areas,omitempty"`
	ListingsCount int         `bson:"listings_count" json:"listings_count"` // denormalized, may lag
	CreatedAt     time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `bson:"updated_at" json:"updated_at"`
}
