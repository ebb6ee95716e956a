package subscription

import (
	"math"
	"time"
)

// RenewalPeriod is the subscription extension granted by one successful payment.
const RenewalPeriod = 30 * 24 * time.Hour

// ExtendExpiry computes the expiry granted by a successful renewal. An
// unexpired subscription stacks the new period onto the current expiry so no
// paid time is lost by renewing early; a null or past expiry starts the period
// from now.
func ExtendExpiry(current *time.Time, now time.Time) time.Time {
	if current != nil && current.After(now) {
		return current.Add(RenewalPeriod)
	}
	return now.Add(RenewalPeriod)
}

// DaysRemaining returns the number of whole days until expiry, rounded up.
// Zero when the expiry is not in the future.
func DaysRemaining(expiry, now time.Time) int {
	d := expiry.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
