package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/state"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestJournal_AppendList(t *testing.T) {
	j := NewJournal(func() time.Time { return fixedNow })
	st := state.NewMemStore()

	var first Event
	require.NoError(t, st.Update(func(tx state.Tx) (err error) {
		first, err = j.Append(tx, Event{Kind: DemandCreated, DemandID: "aaa"})
		if err != nil {
			return err
		}
		_, err = j.Append(tx, Event{Kind: DepositRecorded, DemandID: "aaa", Amount: 100})
		return err
	}))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, fixedNow, first.At)

	var list []Event
	require.NoError(t, st.View(func(tx state.Tx) (err error) {
		list, err = j.List(tx)
		return err
	}))
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0])
	assert.Equal(t, DepositRecorded, list[1].Kind)
	assert.Equal(t, uint64(2), list[1].Seq)
	assert.NotEqual(t, list[0].ID, list[1].ID)
}

func TestJournal_RollsBackWithUnitOfWork(t *testing.T) {
	j := NewJournal(nil)
	st := state.NewMemStore()

	err := st.Update(func(tx state.Tx) error {
		if _, err := j.Append(tx, Event{Kind: DemandCreated}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	require.NoError(t, st.View(func(tx state.Tx) error {
		list, err := j.List(tx)
		require.NoError(t, err)
		assert.Empty(t, list)
		return nil
	}))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Publish(Event{Kind: ShareAdded})
	r.Publish(Event{Kind: PoolWithdrawn})
	assert.Equal(t, []Kind{ShareAdded, PoolWithdrawn}, r.Kinds())
	assert.Len(t, r.Events(), 2)
	r.Reset()
	assert.Empty(t, r.Events())
}

func TestLogSink(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	sink := NewLogSink(zap.New(core), nil)

	acct := account.Account{0xAA}
	sink.Publish(Event{Kind: PoolAssigned, DemandID: "aaa", Account: acct, Amount: 25, Pool: "profit"})

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "pool-assigned", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "aaa", fields["demand_id"])
	assert.Equal(t, acct.String(), fields["account"])
	assert.Equal(t, uint64(25), fields["amount"])
	assert.Equal(t, "profit", fields["pool"])
}

func TestLogSink_AddressFormat(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	acct := account.Account{0xAA}

	NewLogSink(zap.New(core), AddressAccounts(true)).Publish(Event{Kind: FundsDeposited, Account: acct})
	NewLogSink(zap.New(core), AddressAccounts(false)).Publish(Event{Kind: FundsDeposited, Account: acct})

	mainnet, err := acct.Address(true)
	require.NoError(t, err)
	testnet, err := acct.Address(false)
	require.NoError(t, err)
	assert.NotEqual(t, mainnet, testnet)

	entries := observed.All()
	require.Len(t, entries, 2)
	assert.Equal(t, mainnet, entries[0].ContextMap()["account"])
	assert.Equal(t, testnet, entries[1].ContextMap()["account"])
}

func TestFanout(t *testing.T) {
	var a, b Recorder
	f := Fanout{&a, nil, &b}
	f.Publish(Event{Kind: RewardIssued})
	assert.Equal(t, []Kind{RewardIssued}, a.Kinds())
	assert.Equal(t, []Kind{RewardIssued}, b.Kinds())
}
