package account

import "errors"

var (
	// ErrInvalidAccount indicates the input is neither a P2PKH address nor a 20-byte hex hash.
	ErrInvalidAccount = errors.New("account: invalid account")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("account: required parameter is nil")
)
