package revshare

import (
	"fmt"

	"github.com/bitfsorg/libmargin-go/account"
)

// Kind identifies one of the two distribution pools.
type Kind uint8

const (
	// KindProfit receives fulfillment fees.
	KindProfit Kind = iota + 1
	// KindDestroy receives margin forfeited by a destroyed transaction.
	KindDestroy
)

// Kinds lists every pool.
var Kinds = []Kind{KindProfit, KindDestroy}

func (k Kind) String() string {
	switch k {
	case KindProfit:
		return "profit"
	case KindDestroy:
		return "destroy"
	default:
		return fmt.Sprintf("pool(%d)", uint8(k))
	}
}

func (k Kind) valid() bool {
	return k == KindProfit || k == KindDestroy
}

// Policy decides how much of the user pool one shareholder may withdraw.
type Policy string

const (
	// PolicyPooled lets any shareholder draw up to the whole pending user pool.
	PolicyPooled Policy = "pooled"
	// PolicyProportional caps a shareholder at its share-weighted part of all
	// user inflow, less what it already withdrew.
	PolicyProportional Policy = "proportional"
)

// Pool is the state of one distribution pool.
type Pool struct {
	Kind            Kind
	PlatformBalance uint64 // platform cut awaiting WithdrawPlatform
	TotalShares     uint64
	PendingUserPool uint64 // user cut awaiting WithdrawUserShare
	UserInflow      uint64 // every user cut ever assigned
}

// Total returns the value the pool currently holds.
func (p *Pool) Total() uint64 {
	return p.PlatformBalance + p.PendingUserPool
}

// ShareEntry is one shareholder's cumulative share count.
type ShareEntry struct {
	Account account.Account
	Share   uint64
}

// Distribution is one shareholder's computed amount.
type Distribution struct {
	Account account.Account
	Amount  uint64
}
