package revshare

import "fmt"

// ValidateShareConservation checks that the entry shares sum to totalShares.
func ValidateShareConservation(entries []ShareEntry, totalShares uint64) error {
	var sum uint64
	for _, e := range entries {
		if sum+e.Share < sum {
			return fmt.Errorf("%w: share sum overflows", ErrShareConservationViolation)
		}
		sum += e.Share
	}
	if sum != totalShares {
		return fmt.Errorf("%w: entries=%d total=%d", ErrShareConservationViolation, sum, totalShares)
	}
	return nil
}

// ValidateDistribution checks that distributions pay exactly totalPayment,
// one amount per entry, in entry order.
func ValidateDistribution(distributions []Distribution, entries []ShareEntry, totalPayment uint64) error {
	if len(distributions) != len(entries) {
		return fmt.Errorf("%w: distribution count %d != entry count %d",
			ErrDistributionMismatch, len(distributions), len(entries))
	}

	var paid uint64
	for i := range distributions {
		if distributions[i].Account != entries[i].Account {
			return fmt.Errorf("%w: entry %d: account mismatch", ErrDistributionMismatch, i)
		}
		paid += distributions[i].Amount
	}
	if paid != totalPayment {
		return fmt.Errorf("%w: paid %d != payment %d", ErrDistributionMismatch, paid, totalPayment)
	}
	return nil
}
