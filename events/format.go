package events

import "github.com/bitfsorg/libmargin-go/account"

// AccountFormat renders an account in sink output.
type AccountFormat func(account.Account) string

// HexAccounts renders an account as its hex public key hash.
func HexAccounts(a account.Account) string {
	return a.String()
}

// AddressAccounts renders accounts as P2PKH addresses for mainnet or a test
// network. An account that cannot be encoded falls back to hex.
func AddressAccounts(mainnet bool) AccountFormat {
	return func(a account.Account) string {
		addr, err := a.Address(mainnet)
		if err != nil {
			return a.String()
		}
		return addr
	}
}
