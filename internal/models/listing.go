package models

import (
	"fmt"
	"time"

	"hoyhub/backend/internal/plan"
	"hoyhub/backend/internal/utils"
)

// Status is the sale/rental state of a listing. The stored values carry
// historical synonyms ("active" for "available", "rented" for "rented_out")
// which must keep matching; use the predicate helpers rather than comparing
// raw strings.
type Status string

const (
	StatusAvailable Status = "available"
	StatusActive    Status = "active" // legacy synonym of available
	StatusRentedOut Status = "rented_out"
	StatusRented    Status = "rented" // legacy synonym of rented_out
	StatusSold      Status = "sold"
)

// IsLive reports whether the listing is open for enquiries (available/active).
func (s Status) IsLive() bool {
	return s == StatusAvailable || s == StatusActive
}

// IsRented reports whether the listing is rented out, accepting both stored spellings.
func (s Status) IsRented() bool {
	return s == StatusRentedOut || s == StatusRented
}

// Category classifies a property listing and dictates which feature set applies.
type Category string

const (
	CategoryResidential Category = "residential"
	CategoryCommercial  Category = "commercial"
	CategoryLand        Category = "land"
)

// ResidentialFeatures are the attributes of a residential property.
type ResidentialFeatures struct {
	Bedrooms  int     `bson:"bedrooms" json:"bedrooms"`
	Bathrooms int     `bson:"bathrooms" json:"bathrooms"`
	SizeSqm   float64 `bson:"size_sqm,omitempty" json:"size_sqm,omitempty"`
}

// CommercialFeatures are the attributes of a commercial property.
type CommercialFeatures struct {
	Floors  int     `bson:"floors" json:"floors"`
	SizeSqm float64 `bson:"size_sqm,omitempty" json:"size_sqm,omitempty"`
}

// Features is a tagged union keyed by the listing's category. Exactly the
// variant matching the category is set; land listings carry no variant.
type Features struct {
	Residential *ResidentialFeatures `bson:"residential,omitempty" json:"residential,omitempty"`
	Commercial  *CommercialFeatures  `bson:"commercial,omitempty" json:"commercial,omitempty"`
}

// ValidateFeatures checks that the feature variant matches the category.
// The store is schemaless, so this runs at the boundary when accepting input.
func ValidateFeatures(category Category, f *Features) error {
	switch category {
	case CategoryResidential:
		if f == nil || f.Residential == nil {
			return fmt.Errorf("residential listing requires residential features")
		}
		if f.Commercial != nil {
			return fmt.Errorf("residential listing cannot carry commercial features")
		}
	case CategoryCommercial:
		if f == nil || f.Commercial == nil {
			return fmt.Errorf("commercial listing requires commercial features")
		}
		if f.Residential != nil {
			return fmt.Errorf("commercial listing cannot carry residential features")
		}
	case CategoryLand:
		if f != nil && (f.Residential != nil || f.Commercial != nil) {
			return fmt.Errorf("land listing carries no feature set")
		}
	default:
		return fmt.Errorf("unknown listing category %q", category)
	}
	return nil
}

// Listing represents a property record owned by an agent.
type Listing struct {
	Base          `bson:",inline"`
	OwnerID       utils.SixID `bson:"owner_id" json:"owner_id"`
	Title         string      `bson:"title" json:"title"`
	Description   string      `bson:"description" json:"description"`
	Area          string      `bson:"area" json:"area"` // neighbourhood; free-text searched with title
	City          string      `bson:"city" json:"city"`
	Category      Category    `bson:"category" json:"category"`
	IsForSale     bool        `bson:"is_for_sale" json:"is_for_sale"`
	Price         float64     `bson:"price" json:"price"` // USD
	DiscountPrice *float64    `bson:"discount_price,omitempty" json:"discount_price,omitempty"`
	Status        Status      `bson:"status" json:"status"`
	Archived      bool        `bson:"archived" json:"archived"` // soft hide, independent of Status
	Images        []string    `bson:"images" json:"images"`     // ordered URLs
	Features      *Features   `bson:"features,omitempty" json:"features,omitempty"`
	// PlanTier is a snapshot of the owner's tier at the last save, used for
	// the free-tier edit cooldown.
	PlanTier  plan.Tier `bson:"plan_tier" json:"plan_tier"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsActive reports whether a listing should appear in public listings:
// live status and not archived. Both flags are independent and both matter.
func (l *Listing) IsActive() bool {
	return l.Status.IsLive() && !l.Archived
}
