package demand

import "errors"

var (
	// ErrNotFound indicates no demand exists under the given id.
	ErrNotFound = errors.New("demand: not found")

	// ErrDuplicate indicates a demand already exists under the requested id.
	ErrDuplicate = errors.New("demand: duplicate id")

	// ErrZeroDeposit indicates a demand posted without a required deposit.
	ErrZeroDeposit = errors.New("demand: required deposit must be greater than zero")

	// ErrZeroAccount indicates the zero account tried to act.
	ErrZeroAccount = errors.New("demand: zero account")

	// ErrAlreadyAccepted indicates the demand already has an acceptor.
	ErrAlreadyAccepted = errors.New("demand: already accepted")

	// ErrDeleted indicates the demand was deleted by its creator.
	ErrDeleted = errors.New("demand: deleted")

	// ErrNotCreator indicates a creator-only action by someone else.
	ErrNotCreator = errors.New("demand: caller is not the creator")

	// ErrSelfAccept indicates the creator tried to accept their own demand.
	ErrSelfAccept = errors.New("demand: creator cannot accept own demand")
)
