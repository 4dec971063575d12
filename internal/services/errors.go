package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrListingLimitReached signals the free-tier creation cap; the UI turns it
// into an upgrade prompt.
var ErrListingLimitReached = errors.New("listing limit reached for the free plan")

// EditLockedError is returned when a free-tier listing is still inside its
// edit cooldown.
type EditLockedError struct {
	HoursRemaining int
}

func (e *EditLockedError) Error() string {
	return fmt.Sprintf("listing is locked; editable in %d hours", e.HoursRemaining)
}

// ValidationError carries the user-facing messages from draft validation.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid listing: " + strings.Join(e.Messages, "; ")
}
