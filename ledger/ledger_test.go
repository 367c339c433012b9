package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/state"
)

func makeAcct(seed byte) account.Account {
	var a account.Account
	for i := range a {
		a[i] = seed
	}
	return a
}

func update(t *testing.T, s state.Store, fn func(tx state.Tx) error) error {
	t.Helper()
	return s.Update(fn)
}

func TestCreditDebit(t *testing.T) {
	s := state.NewMemStore()
	l := New(AssetMargin)
	alice := makeAcct(0xAA)

	require.NoError(t, update(t, s, func(tx state.Tx) error {
		return l.Credit(tx, alice, 500)
	}))
	require.NoError(t, update(t, s, func(tx state.Tx) error {
		return l.Debit(tx, alice, 200)
	}))

	require.NoError(t, s.View(func(tx state.Tx) error {
		bal, err := l.Balance(tx, alice)
		require.NoError(t, err)
		assert.Equal(t, uint64(300), bal)
		return nil
	}))
}

func TestDebit_InsufficientFunds(t *testing.T) {
	s := state.NewMemStore()
	l := New(AssetMargin)
	alice := makeAcct(0xAA)

	err := update(t, s, func(tx state.Tx) error {
		if err := l.Credit(tx, alice, 100); err != nil {
			return err
		}
		return l.Debit(tx, alice, 101)
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// The credit above was rolled back with the failed debit.
	require.NoError(t, s.View(func(tx state.Tx) error {
		bal, err := l.Balance(tx, alice)
		assert.Zero(t, bal)
		return err
	}))
}

func TestCredit_Overflow(t *testing.T) {
	s := state.NewMemStore()
	l := New(AssetMargin)
	alice := makeAcct(0xAA)

	err := update(t, s, func(tx state.Tx) error {
		if err := l.Credit(tx, alice, math.MaxUint64); err != nil {
			return err
		}
		return l.Credit(tx, alice, 1)
	})
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestPosting_Validation(t *testing.T) {
	s := state.NewMemStore()
	l := New(AssetMargin)

	tests := []struct {
		name    string
		fn      func(tx state.Tx) error
		wantErr error
	}{
		{"zero amount credit", func(tx state.Tx) error { return l.Credit(tx, makeAcct(1), 0) }, ErrZeroAmount},
		{"zero amount debit", func(tx state.Tx) error { return l.Debit(tx, makeAcct(1), 0) }, ErrZeroAmount},
		{"zero account", func(tx state.Tx) error { return l.Credit(tx, account.Zero, 5) }, ErrZeroAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, update(t, s, tt.fn), tt.wantErr)
		})
	}
}

func TestTransfer(t *testing.T) {
	s := state.NewMemStore()
	l := New(AssetMargin)
	alice, bob := makeAcct(0xAA), makeAcct(0xBB)

	require.NoError(t, update(t, s, func(tx state.Tx) error {
		if err := l.Credit(tx, alice, 100); err != nil {
			return err
		}
		return l.Transfer(tx, alice, bob, 100)
	}))

	require.NoError(t, s.View(func(tx state.Tx) error {
		a, err := l.Balance(tx, alice)
		require.NoError(t, err)
		b, err := l.Balance(tx, bob)
		require.NoError(t, err)
		total, err := l.Total(tx)
		require.NoError(t, err)

		assert.Zero(t, a)
		assert.Equal(t, uint64(100), b)
		assert.Equal(t, uint64(100), total)
		return nil
	}))

	err := update(t, s, func(tx state.Tx) error {
		return l.Transfer(tx, alice, bob, 1)
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestAssetsAreIndependent(t *testing.T) {
	s := state.NewMemStore()
	margin := New(AssetMargin)
	token := New("token")
	alice := makeAcct(0xAA)

	require.NoError(t, update(t, s, func(tx state.Tx) error {
		return token.Credit(tx, alice, 7)
	}))
	require.NoError(t, s.View(func(tx state.Tx) error {
		bal, err := margin.Balance(tx, alice)
		assert.Zero(t, bal)
		assert.Equal(t, Asset("token"), token.Asset())
		return err
	}))
}

func TestBalance_Corrupt(t *testing.T) {
	s := state.NewMemStore()
	l := New(AssetMargin)
	alice := makeAcct(0xAA)

	require.NoError(t, update(t, s, func(tx state.Tx) error {
		return tx.Put([]byte("balances/margin"), alice[:], []byte{1, 2})
	}))
	err := s.View(func(tx state.Tx) error {
		_, err := l.Balance(tx, alice)
		return err
	})
	assert.ErrorIs(t, err, ErrCorruptBalance)
}
