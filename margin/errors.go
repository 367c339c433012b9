package margin

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no margin has been created for the demand.
	ErrNotFound = errors.New("margin: not found")

	// ErrUnauthorized indicates the caller is neither creator nor acceptor.
	ErrUnauthorized = errors.New("margin: caller is not a party to the demand")

	// ErrDemandNotAccepted indicates a deposit before the demand was accepted.
	ErrDemandNotAccepted = errors.New("margin: demand not accepted")

	// ErrAlreadyAdded indicates the caller's side already holds a deposit.
	ErrAlreadyAdded = errors.New("margin: deposit already added")

	// ErrZeroAmount indicates a zero deposit.
	ErrZeroAmount = errors.New("margin: deposit must be greater than zero")

	// ErrBelowRequired indicates a creator deposit under the demand's requirement.
	ErrBelowRequired = errors.New("margin: deposit below required amount")

	// ErrInvalidDepositRatio indicates the acceptor deposit is outside the
	// allowed multiple of the creator deposit, or the creator has not deposited.
	ErrInvalidDepositRatio = errors.New("margin: invalid deposit ratio")

	// ErrDepositNotAdded indicates a required deposit is absent or zero.
	ErrDepositNotAdded = errors.New("margin: deposit not added")

	// ErrAcceptorDepositMissing is ErrDepositNotAdded for the acceptor side.
	ErrAcceptorDepositMissing = fmt.Errorf("%w: acceptor deposit missing", ErrDepositNotAdded)

	// ErrLocked indicates a withdrawal from a locked margin.
	ErrLocked = errors.New("margin: deposit locked")

	// ErrAlreadyLocked indicates a lock on a locked margin.
	ErrAlreadyLocked = errors.New("margin: already locked")

	// ErrNotLocked indicates an unlock or payout on an unlocked margin.
	ErrNotLocked = errors.New("margin: not locked")

	// ErrInvalidShare indicates a payout retaining more than a deposit holds.
	ErrInvalidShare = errors.New("margin: retained amount exceeds deposit")
)
