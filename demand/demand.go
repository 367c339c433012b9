// Package demand keeps the registry of posted demands: who posted them, the
// collateral they require and whether a counterpart has accepted.
package demand

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/state"
)

var (
	bucket    = []byte("demands")
	seqBucket = []byte("demands/seq")
)

// Demand is a posted request for a counterpart. Lifecycle is
// Open -> Accepted | Deleted, and neither terminal state transitions again.
type Demand struct {
	ID              string
	Creator         account.Account
	Acceptor        account.Account // zero until accepted
	RequiredDeposit uint64
	Accepted        bool
	Deleted         bool
	CreatedAt       time.Time
}

// IsParty reports whether acct is the creator or the recorded acceptor.
func (d *Demand) IsParty(acct account.Account) bool {
	if acct.IsZero() {
		return false
	}
	return acct == d.Creator || (d.Accepted && acct == d.Acceptor)
}

// Registry reads and writes demands inside a state.Tx.
type Registry struct {
	allowDeleteAccepted bool
	now                 func() time.Time
}

// NewRegistry returns a registry. When allowDeleteAccepted is false, Delete
// rejects demands that already have an acceptor.
func NewRegistry(allowDeleteAccepted bool, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{allowDeleteAccepted: allowDeleteAccepted, now: now}
}

// Create posts a demand. An empty id allocates the next free sequential id.
func (r *Registry) Create(tx state.Tx, id string, caller account.Account, requiredDeposit uint64) (*Demand, error) {
	if caller.IsZero() {
		return nil, ErrZeroAccount
	}
	if requiredDeposit == 0 {
		return nil, ErrZeroDeposit
	}

	if id == "" {
		var err error
		if id, err = r.nextID(tx); err != nil {
			return nil, err
		}
	} else if tx.Get(bucket, []byte(id)) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicate, id)
	}

	d := &Demand{
		ID:              id,
		Creator:         caller,
		RequiredDeposit: requiredDeposit,
		CreatedAt:       r.now().UTC(),
	}
	if err := r.put(tx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Accept records caller as the demand's acceptor.
func (r *Registry) Accept(tx state.Tx, id string, caller account.Account) (*Demand, error) {
	if caller.IsZero() {
		return nil, ErrZeroAccount
	}
	d, err := r.Get(tx, id)
	if err != nil {
		return nil, err
	}
	if d.Accepted {
		return nil, ErrAlreadyAccepted
	}
	if d.Deleted {
		return nil, ErrDeleted
	}
	if caller == d.Creator {
		return nil, ErrSelfAccept
	}

	d.Acceptor = caller
	d.Accepted = true
	if err := r.put(tx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete marks the demand deleted. Only the creator may delete.
func (r *Registry) Delete(tx state.Tx, id string, caller account.Account) (*Demand, error) {
	d, err := r.Get(tx, id)
	if err != nil {
		return nil, err
	}
	if caller != d.Creator {
		return nil, ErrNotCreator
	}
	if d.Deleted {
		return nil, ErrDeleted
	}
	if d.Accepted && !r.allowDeleteAccepted {
		return nil, ErrAlreadyAccepted
	}

	d.Deleted = true
	if err := r.put(tx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Get returns the demand stored under id.
func (r *Registry) Get(tx state.Tx, id string) (*Demand, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	var d Demand
	if err := state.GetGob(tx, bucket, []byte(id), &d); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return nil, err
	}
	return &d, nil
}

// ForEach calls fn for every demand in id order.
func (r *Registry) ForEach(tx state.Tx, fn func(*Demand) error) error {
	return tx.ForEach(bucket, func(k, _ []byte) error {
		d, err := r.Get(tx, string(k))
		if err != nil {
			return err
		}
		return fn(d)
	})
}

// nextID skips sequence values that collide with caller-chosen ids.
func (r *Registry) nextID(tx state.Tx) (string, error) {
	for {
		n, err := tx.NextSequence(seqBucket)
		if err != nil {
			return "", fmt.Errorf("demand: allocate id: %w", err)
		}
		id := strconv.FormatUint(n, 10)
		if tx.Get(bucket, []byte(id)) == nil {
			return id, nil
		}
	}
}

func (r *Registry) put(tx state.Tx, d *Demand) error {
	return state.PutGob(tx, bucket, []byte(d.ID), d)
}
