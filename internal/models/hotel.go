package models

import (
	"time"

	"hoyhub/backend/internal/utils"
)

// RoomType describes one bookable room class within a hotel.
type RoomType struct {
	Name          string  `bson:"name" json:"name"`
	PricePerNight float64 `bson:"price_per_night" json:"price_per_night"`
	Capacity      int     `bson:"capacity" json:"capacity"`
}

// HotelLocation is the nested location block hotels are searched on.
type HotelLocation struct {
	City    string `bson:"city" json:"city"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// Hotel represents a hotel record owned by a hotel operator.
// Hotels have no archived flag; visibility is governed by the record existing.
type Hotel struct {
	Base          `bson:",inline"`
	OwnerID       utils.SixID     `bson:"owner_id" json:"owner_id"`
	Name          string          `bson:"name" json:"name"`
	Slug          string          `bson:"slug" json:"slug"`
	Description   string          `bson:"description,omitempty" json:"description,omitempty"`
	Location      HotelLocation   `bson:"location" json:"location"`
	PricePerNight float64         `bson:"price_per_night" json:"price_per_night"` // cheapest room, denormalized
	RoomTypes     []RoomType      `bson:"room_types,omitempty" json:"room_types,omitempty"`
	Amenities     map[string]bool `bson:"amenities,omitempty" json:"amenities,omitempty"`
	Images        []string        `bson:"images" json:"images"`
	CreatedAt     time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `bson:"updated_at" json:"updated_at"`
}

// BookingStatus tracks a stay request through its lifecycle. Payment and
// confirmation happen off-platform, so status moves by operator action.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking captures a hotel stay request.
type Booking struct {
	Base       `bson:",inline"`
	HotelID    utils.SixID   `bson:"hotel_id" json:"hotel_id"`
	UserID     utils.SixID   `bson:"user_id" json:"user_id"`
	RoomType   string        `bson:"room_type" json:"room_type"`
	CheckIn    time.Time     `bson:"check_in" json:"check_in"`
	CheckOut   time.Time     `bson:"check_out" json:"check_out"`
	Nights     int           `bson:"nights" json:"nights"`
	Guests     int           `bson:"guests" json:"guests"`
	TotalPrice float64       `bson:"total_price" json:"total_price"`
	Status     BookingStatus `bson:"status" json:"status"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
}
