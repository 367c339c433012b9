package whitelist

import "errors"

var (
	// ErrNotOwner indicates a grant or revoke by someone other than the list owner.
	ErrNotOwner = errors.New("whitelist: caller is not the owner")

	// ErrNotWhitelisted indicates the caller lacks the capability for a privileged call.
	ErrNotWhitelisted = errors.New("whitelist: caller not whitelisted")

	// ErrZeroAccount indicates an attempt to grant the zero account.
	ErrZeroAccount = errors.New("whitelist: zero account")
)
