package revshare

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPool indicates a pool kind other than profit or destroy.
	ErrUnknownPool = errors.New("revshare: unknown pool")

	// ErrZeroAccount indicates a share for the zero account.
	ErrZeroAccount = errors.New("revshare: zero account")

	// ErrZeroAmount indicates a zero assignment or withdrawal.
	ErrZeroAmount = errors.New("revshare: zero amount")

	// ErrOverflow indicates a pool counter would overflow.
	ErrOverflow = errors.New("revshare: pool balance overflow")

	// ErrUnauthorized indicates a platform withdrawal by someone other than
	// the platform account or a whitelisted operator.
	ErrUnauthorized = errors.New("revshare: unauthorized")

	// ErrNoPlatform indicates no platform account is configured.
	ErrNoPlatform = errors.New("revshare: platform account not configured")

	// ErrNoProfit indicates the platform balance is zero.
	ErrNoProfit = errors.New("revshare: no profit to withdraw")

	// ErrNoShares indicates the caller holds no shares in the pool.
	ErrNoShares = errors.New("revshare: caller holds no shares")

	// ErrInsufficientPoolFunds indicates the withdrawal exceeds the pending user pool.
	ErrInsufficientPoolFunds = errors.New("revshare: insufficient pool funds")

	// ErrExceedsEntitlement is ErrInsufficientPoolFunds for a withdrawal above
	// the caller's proportional entitlement.
	ErrExceedsEntitlement = fmt.Errorf("%w: exceeds entitlement", ErrInsufficientPoolFunds)

	// ErrInsufficientPayment indicates the payment is too small to distribute.
	ErrInsufficientPayment = errors.New("revshare: insufficient payment for distribution")

	// ErrNoEntries indicates the pool has no shareholders.
	ErrNoEntries = errors.New("revshare: no shareholder entries")

	// ErrZeroTotalShares indicates total shares is zero.
	ErrZeroTotalShares = errors.New("revshare: zero total shares")

	// ErrShareConservationViolation indicates shareholder shares do not sum to the pool total.
	ErrShareConservationViolation = errors.New("revshare: share conservation violated")

	// ErrDistributionMismatch indicates a distribution that does not pay out exactly the payment.
	ErrDistributionMismatch = errors.New("revshare: distribution mismatch")

	// ErrInvalidRegistryData indicates a stored shareholder registry cannot be decoded.
	ErrInvalidRegistryData = errors.New("revshare: invalid registry data")

	// ErrTooManyEntries indicates a registry too large to serialize.
	ErrTooManyEntries = errors.New("revshare: too many registry entries")

	// ErrInvalidPercentage indicates a platform percentage above 100.
	ErrInvalidPercentage = errors.New("revshare: platform percentage above 100")
)
