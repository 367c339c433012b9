package settlement

import (
	"fmt"

	"github.com/bitfsorg/libmargin-go/account"
)

// Status is the lifecycle position of a transaction. Open is the only
// initial state; the other three are terminal and mutually exclusive.
type Status uint8

const (
	StatusOpen Status = iota
	StatusFulfilled
	StatusCancelled
	StatusDestroyed
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusFulfilled:
		return "fulfilled"
	case StatusCancelled:
		return "cancelled"
	case StatusDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Transaction tracks both parties' confirmations for one demand.
type Transaction struct {
	DemandID            string
	Creator             account.Account
	Acceptor            account.Account
	CreatorLockDeposit  uint64 // creator deposit at creation
	AcceptorLockDeposit uint64 // acceptor deposit at creation
	CreatorFulfilled    bool
	AcceptorFulfilled   bool
	CreatorCancelled    bool
	AcceptorCancelled   bool
	Destroyed           bool
	Status              Status
}

// IsParty reports whether acct is the creator or the acceptor.
func (t *Transaction) IsParty(acct account.Account) bool {
	return !acct.IsZero() && (acct == t.Creator || acct == t.Acceptor)
}

// Outcome describes how a transaction reaching a terminal state moved value.
type Outcome struct {
	DemandID       string
	Status         Status
	CreatorRefund  uint64
	AcceptorRefund uint64
	Fee            uint64 // routed to the Profit Pool on fulfillment
	Forfeit        uint64 // routed to the Destroy Fund Pool on destruction
	PlatformCut    uint64 // platform part of Fee or Forfeit
	UserCut        uint64 // user-pool part of Fee or Forfeit
}

// Routed returns the value sent to a pool.
func (o *Outcome) Routed() uint64 {
	return o.Fee + o.Forfeit
}
