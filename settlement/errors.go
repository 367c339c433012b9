package settlement

import "errors"

var (
	// ErrNotFound indicates no transaction exists for the demand.
	ErrNotFound = errors.New("settlement: transaction not found")

	// ErrAlreadyExists indicates a second transaction for the same demand.
	ErrAlreadyExists = errors.New("settlement: transaction already exists")

	// ErrUnauthorized indicates the caller is neither creator nor acceptor.
	ErrUnauthorized = errors.New("settlement: caller is not a party to the transaction")

	// ErrMarginNotLocked indicates the demand's margin is not locked.
	ErrMarginNotLocked = errors.New("settlement: margin not locked")

	// ErrTransactionClosed indicates an action on a settled transaction.
	ErrTransactionClosed = errors.New("settlement: transaction closed")

	// ErrAlreadyConfirmed indicates the caller's side already confirmed.
	ErrAlreadyConfirmed = errors.New("settlement: already confirmed by this party")

	// ErrTransactionOpen indicates the margin is committed to an open transaction.
	ErrTransactionOpen = errors.New("settlement: transaction open")
)
