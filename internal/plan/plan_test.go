package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanCreate_PaidTiersUncapped(t *testing.T) {
	limits := DefaultLimits()

	for _, tier := range []Tier{TierPro, TierPremium} {
		for _, count := range []int{0, 3, 100} {
			assert.True(t, limits.CanCreate(tier, count), "tier %s count %d", tier, count)
		}
	}
}

func TestCanCreate_FreeTierCap(t *testing.T) {
	limits := DefaultLimits()

	assert.True(t, limits.CanCreate(TierFree, 0))
	assert.True(t, limits.CanCreate(TierFree, 2))
	assert.False(t, limits.CanCreate(TierFree, 3))
	assert.False(t, limits.CanCreate(TierFree, 4))
}

func TestCheckEditLock_FreeTier(t *testing.T) {
	limits := DefaultLimits()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		sinceSave time.Duration
		locked    bool
		hours     int
	}{
		{"just saved", 0, true, 24},
		{"10 hours ago", 10 * time.Hour, true, 14},
		{"23h59m ago", 23*time.Hour + 59*time.Minute, true, 1},
		{"exactly 24h ago", 24 * time.Hour, false, 0}, // boundary is inclusive
		{"25 hours ago", 25 * time.Hour, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lock := limits.CheckEditLock(TierFree, now.Add(-tt.sinceSave), now)
			assert.Equal(t, tt.locked, lock.Locked)
			assert.Equal(t, tt.hours, lock.HoursRemaining())
		})
	}
}

func TestCheckEditLock_PaidTiersNeverLock(t *testing.T) {
	limits := DefaultLimits()
	now := time.Now()

	for _, tier := range []Tier{TierPro, TierPremium} {
		lock := limits.CheckEditLock(tier, now, now)
		assert.False(t, lock.Locked, "tier %s", tier)
		assert.Equal(t, 0, lock.HoursRemaining())
	}
}

func TestValidateDraft_RequiresImage(t *testing.T) {
	limits := DefaultLimits()

	for _, tier := range []Tier{TierFree, TierPro, TierPremium} {
		errs := limits.ValidateDraft(tier, Draft{Description: "ok"})
		assert.NotEmpty(t, errs, "tier %s should reject zero images", tier)
	}
}

func TestValidateDraft_FreeDescriptionLength(t *testing.T) {
	limits := DefaultLimits()

	at100 := make([]byte, 100)
	at101 := make([]byte, 101)
	for i := range at100 {
		at100[i] = 'a'
	}
	for i := range at101 {
		at101[i] = 'a'
	}

	errs := limits.ValidateDraft(TierFree, Draft{Description: string(at100), ExistingImages: 1})
	assert.Empty(t, errs)

	errs = limits.ValidateDraft(TierFree, Draft{Description: string(at101), ExistingImages: 1})
	assert.Len(t, errs, 1)

	// Paid tiers have no description cap
	errs = limits.ValidateDraft(TierPro, Draft{Description: string(at101), ExistingImages: 1})
	assert.Empty(t, errs)
}

func TestValidateDraft_FreeImageCount(t *testing.T) {
	limits := DefaultLimits()

	// 1 existing + 1 new = 2 total, over the free cap
	errs := limits.ValidateDraft(TierFree, Draft{Description: "d", ExistingImages: 1, NewImages: 1})
	assert.Len(t, errs, 1)

	errs = limits.ValidateDraft(TierFree, Draft{Description: "d", ExistingImages: 0, NewImages: 1})
	assert.Empty(t, errs)

	// Paid tier is unlimited
	errs = limits.ValidateDraft(TierPremium, Draft{Description: "d", ExistingImages: 10, NewImages: 10})
	assert.Empty(t, errs)
}
