package escrow

import (
	"errors"

	"github.com/bitfsorg/libmargin-go/demand"
	"github.com/bitfsorg/libmargin-go/ledger"
	"github.com/bitfsorg/libmargin-go/margin"
	"github.com/bitfsorg/libmargin-go/revshare"
	"github.com/bitfsorg/libmargin-go/settlement"
	"github.com/bitfsorg/libmargin-go/whitelist"
)

var (
	// ErrNilStore indicates New was called without a store.
	ErrNilStore = errors.New("escrow: nil store")

	// ErrNoTransferer indicates Withdraw was called with no outbound transferer configured.
	ErrNoTransferer = errors.New("escrow: no transferer configured")

	// ErrTransferFailed wraps a transferer error; the withdrawal was rolled back.
	ErrTransferFailed = errors.New("escrow: transfer failed")

	// ErrTransferUnavailable indicates the transfer circuit breaker is open.
	ErrTransferUnavailable = errors.New("escrow: transfer unavailable")
)

// ErrorCategory groups errors by what the caller got wrong.
type ErrorCategory int

const (
	// CategoryNone is the category of a nil error.
	CategoryNone ErrorCategory = iota
	// CategoryAuthorization: the caller lacks the role for the target entity.
	CategoryAuthorization
	// CategoryState: the operation is invalid at the entity's lifecycle position.
	CategoryState
	// CategoryValue: a numeric precondition on an amount does not hold.
	CategoryValue
	// CategoryInternal: storage, transfer or context failures.
	CategoryInternal
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryAuthorization:
		return "authorization"
	case CategoryState:
		return "state"
	case CategoryValue:
		return "value"
	default:
		return "internal"
	}
}

var categories = []struct {
	cat  ErrorCategory
	errs []error
}{
	{CategoryAuthorization, []error{
		margin.ErrUnauthorized,
		settlement.ErrUnauthorized,
		revshare.ErrUnauthorized,
		revshare.ErrNoShares,
		revshare.ErrZeroAccount,
		demand.ErrNotCreator,
		demand.ErrSelfAccept,
		demand.ErrZeroAccount,
		whitelist.ErrNotWhitelisted,
		whitelist.ErrNotOwner,
		ledger.ErrZeroAccount,
	}},
	{CategoryState, []error{
		demand.ErrNotFound,
		demand.ErrDuplicate,
		demand.ErrAlreadyAccepted,
		demand.ErrDeleted,
		margin.ErrNotFound,
		margin.ErrDemandNotAccepted,
		margin.ErrAlreadyAdded,
		margin.ErrDepositNotAdded,
		margin.ErrLocked,
		margin.ErrAlreadyLocked,
		margin.ErrNotLocked,
		settlement.ErrNotFound,
		settlement.ErrAlreadyExists,
		settlement.ErrMarginNotLocked,
		settlement.ErrTransactionClosed,
		settlement.ErrAlreadyConfirmed,
		settlement.ErrTransactionOpen,
		revshare.ErrUnknownPool,
		revshare.ErrNoPlatform,
	}},
	{CategoryValue, []error{
		demand.ErrZeroDeposit,
		margin.ErrZeroAmount,
		margin.ErrBelowRequired,
		margin.ErrInvalidDepositRatio,
		margin.ErrInvalidShare,
		ledger.ErrZeroAmount,
		ledger.ErrInsufficientFunds,
		ledger.ErrOverflow,
		revshare.ErrZeroAmount,
		revshare.ErrInsufficientPoolFunds,
		revshare.ErrNoProfit,
		revshare.ErrOverflow,
		revshare.ErrInvalidPercentage,
	}},
}

// Category classifies err. Errors not produced by the engine's rules are internal.
func Category(err error) ErrorCategory {
	if err == nil {
		return CategoryNone
	}
	for _, c := range categories {
		for _, target := range c.errs {
			if errors.Is(err, target) {
				return c.cat
			}
		}
	}
	return CategoryInternal
}
