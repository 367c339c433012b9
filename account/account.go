package account

import (
	"encoding/hex"
	"fmt"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"
)

// Size is the length of an account identifier (P2PKH public key hash).
const Size = 20

// Account identifies a participant by the HASH160 of its public key.
// The zero value means "no account".
type Account [Size]byte

// Zero is the empty account.
var Zero Account

// IsZero reports whether a is the empty account.
func (a Account) IsZero() bool {
	return a == Zero
}

// String returns the lowercase hex encoding of the hash.
func (a Account) String() string {
	return hex.EncodeToString(a[:])
}

// Address encodes the account as a P2PKH address for the given network.
func (a Account) Address(mainnet bool) (string, error) {
	addr, err := script.NewAddressFromPublicKeyHash(a[:], mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}
	return addr.AddressString, nil
}

// FromPublicKey derives the account of a public key.
func FromPublicKey(pub *ec.PublicKey) (Account, error) {
	if pub == nil {
		return Zero, fmt.Errorf("%w: public key", ErrNilParam)
	}
	return FromHash(pub.Hash())
}

// FromHash wraps a 20-byte public key hash.
func FromHash(pkh []byte) (Account, error) {
	var a Account
	if len(pkh) != Size {
		return Zero, fmt.Errorf("%w: hash must be %d bytes, got %d", ErrInvalidAccount, Size, len(pkh))
	}
	copy(a[:], pkh)
	return a, nil
}

// Parse accepts either a base58 P2PKH address (any network) or a 40-character hex hash.
func Parse(s string) (Account, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty", ErrInvalidAccount)
	}
	if len(s) == 2*Size {
		if b, err := hex.DecodeString(s); err == nil {
			return FromHash(b)
		}
	}
	addr, err := script.NewAddressFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q: %w", ErrInvalidAccount, s, err)
	}
	return FromHash([]byte(addr.PublicKeyHash))
}

// MustParse is Parse for constants and tests; it panics on error.
func MustParse(s string) Account {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Service returns the account of an in-process service: the HASH160 of its
// name. No key hashes to it in practice, so nobody outside the process can
// act as it.
func Service(name string) Account {
	var a Account
	copy(a[:], bsvhash.Hash160([]byte("service:"+name)))
	return a
}
