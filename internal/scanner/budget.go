package scanner

import (
	"errors"
	"time"
)

var ErrScanTimeout = errors.New("scan exceeded its time budget")

// budget tracks the deadline and match cap of a single scan.
type budget struct {
	deadline   time.Time
	maxMatches int

	matches int

	// checkCounter amortizes time checks.
	checkCounter  int
	checkInterval int

	timedOut  bool
	truncated bool
}

// newBudget creates a budget. A zero timeout or maxMatches disables that limit.
func newBudget(timeout time.Duration, maxMatches int) *budget {
	b := &budget{
		maxMatches:    maxMatches,
		checkInterval: 128,
	}
	if timeout > 0 {
		b.deadline = time.Now().Add(timeout)
	}
	return b
}

// checkDeadline reports ErrScanTimeout once the deadline has passed.
// Time checks are amortized to avoid calling time.Now() on every candidate.
func (b *budget) checkDeadline() error {
	if b.deadline.IsZero() {
		return nil
	}
	b.checkCounter++
	if b.checkCounter%b.checkInterval == 0 && time.Now().After(b.deadline) {
		b.timedOut = true
		return ErrScanTimeout
	}
	return nil
}

// recordMatch counts a match and reports whether the cap has been reached.
func (b *budget) recordMatch() (full bool) {
	b.matches++
	if b.maxMatches > 0 && b.matches >= b.maxMatches {
		b.truncated = true
		return true
	}
	return false
}
