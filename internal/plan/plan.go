// Package plan holds the plan-tier gating rules for listing owners: creation
// caps, the free-tier edit cooldown and per-save draft validation. The rules
// are pure functions over already-loaded data so they can be exercised without
// a database.
package plan

import (
	"fmt"
	"time"
)

// Tier is a per-owner subscription level.
type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierPremium:
		return true
	}
	return false
}

// Limits are the tier-dependent caps. Paid tiers are uncapped on every axis.
type Limits struct {
	FreeListings       int           // max concurrent listings on the free tier
	FreeImages         int           // max images per listing on the free tier
	FreeDescriptionMax int           // max description length on the free tier
	EditCooldown       time.Duration // re-edit lockout after a save on the free tier
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{
		FreeListings:       3,
		FreeImages:         1,
		FreeDescriptionMax: 100,
		EditCooldown:       24 * time.Hour,
	}
}

// CanCreate reports whether an owner on the given tier may create another
// listing given how many they currently have.
func (l Limits) CanCreate(tier Tier, currentCount int) bool {
	if tier != TierFree {
		return true
	}
	return currentCount < l.FreeListings
}

// EditLock describes a listing's edit availability for its owner.
type EditLock struct {
	Locked    bool
	Remaining time.Duration // zero when unlocked
}

// HoursRemaining is the user-facing countdown, rounded up to whole hours.
func (e EditLock) HoursRemaining() int {
	if !e.Locked {
		return 0
	}
	h := int(e.Remaining / time.Hour)
	if e.Remaining%time.Hour != 0 {
		h++
	}
	return h
}

// CheckEditLock computes the edit-lock state for a listing last saved at
// updatedAt, as of now. Paid tiers are never locked. The boundary is
// inclusive: at exactly the cooldown mark the listing becomes editable.
func (l Limits) CheckEditLock(tier Tier, updatedAt, now time.Time) EditLock {
	if tier != TierFree {
		return EditLock{}
	}
	elapsed := now.Sub(updatedAt)
	if elapsed >= l.EditCooldown {
		return EditLock{}
	}
	return EditLock{Locked: true, Remaining: l.EditCooldown - elapsed}
}

// Draft is the subset of a listing save relevant to validation.
type Draft struct {
	Description    string
	ExistingImages int // images already on the document
	NewImages      int // images attached in this save
}

// ValidateDraft checks a draft against the tier's limits and returns all
// user-facing validation messages. An empty slice means the draft is valid.
func (l Limits) ValidateDraft(tier Tier, d Draft) []string {
	var errs []string

	totalImages := d.ExistingImages + d.NewImages
	if totalImages < 1 {
		errs = append(errs, "a listing needs at least one image")
	}

	if tier == TierFree {
		if len(d.Description) > l.FreeDescriptionMax {
			errs = append(errs, fmt.Sprintf("description is limited to %d characters on the free plan", l.FreeDescriptionMax))
		}
		if totalImages > l.FreeImages {
			errs = append(errs, fmt.Sprintf("the free plan allows at most %d image per listing", l.FreeImages))
		}
	}

	return errs
}
