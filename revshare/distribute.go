package revshare

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Split divides amount into the platform cut (platformPct percent, rounded
// down) and the user cut. The user cut takes the rounding remainder so the
// two always sum to amount.
func Split(amount, platformPct uint64) (platform, users uint64, err error) {
	if platformPct > 100 {
		return 0, 0, ErrInvalidPercentage
	}
	platform = mulDiv(amount, platformPct, 100)
	return platform, amount - platform, nil
}

// DistributeRevenue calculates per-shareholder amounts of totalPayment.
// The last entry gets the remainder to avoid integer division precision loss.
func DistributeRevenue(totalPayment uint64, entries []ShareEntry, totalShares uint64) ([]Distribution, error) {
	if totalPayment == 0 {
		return nil, ErrInsufficientPayment
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	if totalShares == 0 {
		return nil, ErrZeroTotalShares
	}

	distributions := make([]Distribution, len(entries))
	var distributed uint64

	for i, entry := range entries {
		distributions[i].Account = entry.Account
		if i == len(entries)-1 {
			// Last shareholder gets remainder
			distributions[i].Amount = totalPayment - distributed
		} else {
			amount := mulDiv(totalPayment, entry.Share, totalShares)
			distributions[i].Amount = amount
			distributed += amount
		}
	}

	return distributions, nil
}

// mulDiv returns a*b/c rounded down, without intermediate overflow.
func mulDiv(a, b, c uint64) uint64 {
	q, _ := dec(a).Mul(dec(b)).QuoRem(dec(c), 0)
	return q.BigInt().Uint64()
}

func dec(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}
