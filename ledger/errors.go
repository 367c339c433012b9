package ledger

import "errors"

var (
	// ErrInsufficientFunds indicates the account balance cannot cover the debit.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrOverflow indicates a credit would overflow the balance.
	ErrOverflow = errors.New("ledger: balance overflow")

	// ErrZeroAmount indicates a zero-value posting.
	ErrZeroAmount = errors.New("ledger: amount must be greater than zero")

	// ErrZeroAccount indicates the empty account was used as a posting target.
	ErrZeroAccount = errors.New("ledger: account is empty")

	// ErrCorruptBalance indicates a stored balance is not 8 bytes.
	ErrCorruptBalance = errors.New("ledger: corrupt balance record")
)
