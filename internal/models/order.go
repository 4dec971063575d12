package models

import (
	"time"

	"hoyhub/backend/internal/utils"
)

// OrderKind discriminates what the order refers to.
type OrderKind string

const (
	OrderKindListing OrderKind = "listing"
	OrderKindBooking OrderKind = "booking"
	OrderKindPlan    OrderKind = "plan_upgrade"
)

// Order captures the details of a purchase intent. Payment is never processed
// in-app: the order document is written and the buyer is handed a WhatsApp
// deep link with a prefilled message for manual processing.
type Order struct {
	Base        `bson:",inline"`
	UserID      utils.SixID  `bson:"user_id" json:"user_id"`
	Kind        OrderKind    `bson:"kind" json:"kind"`
	SubjectID   *utils.SixID `bson:"subject_id,omitempty" json:"subject_id,omitempty"` // listing/booking/nil for plan
	Description string       `bson:"description" json:"description"`
	Amount      float64      `bson:"amount" json:"amount"` // USD
	BuyerName   string       `bson:"buyer_name" json:"buyer_name"`
	BuyerPhone  string       `bson:"buyer_phone" json:"buyer_phone"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
}
