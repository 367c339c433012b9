// Package events records what the engine did. Events are journaled inside
// the unit of work that caused them and fanned out to sinks after commit.
package events

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/state"
)

// Kind names an event.
type Kind string

const (
	DepositRecorded      Kind = "deposit-recorded"
	DepositWithdrawn     Kind = "deposit-withdrawn"
	MarginLocked         Kind = "margin-locked"
	MarginUnlocked       Kind = "margin-unlocked"
	DemandCreated        Kind = "demand-created"
	DemandAccepted       Kind = "demand-accepted"
	DemandDeleted        Kind = "demand-deleted"
	TransactionCreated   Kind = "transaction-created"
	TransactionFulfilled Kind = "transaction-fulfilled"
	TransactionCancelled Kind = "transaction-cancelled"
	TransactionDestroyed Kind = "transaction-destroyed"
	ShareAdded           Kind = "share-added"
	PoolAssigned         Kind = "pool-assigned"
	PoolWithdrawn        Kind = "pool-withdrawn"
	RewardIssued         Kind = "reward-issued"
	FundsDeposited       Kind = "funds-deposited"
	FundsWithdrawn       Kind = "funds-withdrawn"
)

// Event is one journaled occurrence. Fields that do not apply are zero.
type Event struct {
	ID       uuid.UUID
	Seq      uint64
	Kind     Kind
	DemandID string
	Account  account.Account
	Amount   uint64
	Pool     string
	At       time.Time
}

// Sink receives committed events.
type Sink interface {
	Publish(ev Event)
}

var bucket = []byte("events")

// Journal appends events to the store.
type Journal struct {
	now func() time.Time
}

// NewJournal returns a journal stamping events with now.
func NewJournal(now func() time.Time) *Journal {
	if now == nil {
		now = time.Now
	}
	return &Journal{now: now}
}

// Append assigns ev an id, a sequence number and a timestamp, stores it,
// and returns the stored event.
func (j *Journal) Append(tx state.Tx, ev Event) (Event, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Event{}, fmt.Errorf("events: new id: %w", err)
	}
	seq, err := tx.NextSequence(bucket)
	if err != nil {
		return Event{}, fmt.Errorf("events: sequence: %w", err)
	}
	ev.ID, ev.Seq, ev.At = id, seq, j.now().UTC()
	if err := state.PutGob(tx, bucket, seqKey(seq), &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// List returns every journaled event in sequence order.
func (j *Journal) List(tx state.Tx) ([]Event, error) {
	var out []Event
	err := tx.ForEach(bucket, func(k, _ []byte) error {
		var ev Event
		if err := state.GetGob(tx, bucket, k, &ev); err != nil {
			return err
		}
		out = append(out, ev)
		return nil
	})
	return out, err
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
