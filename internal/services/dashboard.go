package services

import (
	"sort"
	"strings"

	"hoyhub/backend/internal/models"
)

// Tab is a dashboard tab selection on the owner's listings view.
type Tab string

const (
	TabAll      Tab = "all"
	TabActive   Tab = "active"
	TabForRent  Tab = "for_rent"
	TabForSale  Tab = "for_sale"
	TabLand     Tab = "land"
	TabRented   Tab = "rented"
	TabSold     Tab = "sold"
	TabArchived Tab = "archived"
)

// ParseTab maps a query-string value to a Tab, defaulting to All.
func ParseTab(s string) Tab {
	switch Tab(strings.ToLower(s)) {
	case TabActive, TabForRent, TabForSale, TabLand, TabRented, TabSold, TabArchived:
		return Tab(strings.ToLower(s))
	default:
		return TabAll
	}
}

// FilterDashboard applies the dashboard predicates in order: free-text search
// over title/area first, then the archived gate, then the tab predicate.
// Archived listings are visible only on the Archived tab; every other tab
// excludes them before its own predicate runs.
func FilterDashboard(listings []models.Listing, tab Tab, query string) []models.Listing {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Listing, 0, len(listings))

	for _, l := range listings {
		if q != "" &&
			!strings.Contains(strings.ToLower(l.Title), q) &&
			!strings.Contains(strings.ToLower(l.Area), q) {
			continue
		}

		if tab == TabArchived {
			if l.Archived {
				out = append(out, l)
			}
			continue
		}
		if l.Archived {
			continue
		}

		switch tab {
		case TabActive:
			if l.Status.IsLive() {
				out = append(out, l)
			}
		case TabForRent:
			if !l.IsForSale && l.Status.IsLive() {
				out = append(out, l)
			}
		case TabForSale:
			if l.IsForSale && l.Status.IsLive() {
				out = append(out, l)
			}
		case TabLand:
			if l.Category == models.CategoryLand {
				out = append(out, l)
			}
		case TabRented:
			if l.Status.IsRented() {
				out = append(out, l)
			}
		case TabSold:
			if l.Status == models.StatusSold {
				out = append(out, l)
			}
		default: // TabAll
			out = append(out, l)
		}
	}

	return out
}

// SortKey is a dashboard sort selection.
type SortKey string

const (
	SortNewest    SortKey = "newest" // default
	SortPriceDesc SortKey = "price_desc"
	SortPriceAsc  SortKey = "price_asc"
)

// SortDashboard orders listings in place. The sort is stable so equal keys
// keep their stored order between refreshes.
func SortDashboard(listings []models.Listing, key SortKey) {
	switch key {
	case SortPriceDesc:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Price > listings[j].Price
		})
	case SortPriceAsc:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Price < listings[j].Price
		})
	default: // SortNewest
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		})
	}
}
