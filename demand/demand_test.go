package demand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/state"
)

func acct(seed byte) account.Account {
	var a account.Account
	for i := range a {
		a[i] = seed
	}
	return a
}

var (
	creator  = acct(0xAA)
	acceptor = acct(0xBB)
	stranger = acct(0xCC)
	fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newRegistry(allowDeleteAccepted bool) (*Registry, state.Store) {
	return NewRegistry(allowDeleteAccepted, func() time.Time { return fixedNow }), state.NewMemStore()
}

// run executes fn in its own unit of work and returns fn's error.
func run(st state.Store, fn func(tx state.Tx) error) error {
	return st.Update(fn)
}

func TestCreate(t *testing.T) {
	r, st := newRegistry(false)

	var d *Demand
	require.NoError(t, run(st, func(tx state.Tx) (err error) {
		d, err = r.Create(tx, "aaa", creator, 100)
		return err
	}))
	assert.Equal(t, "aaa", d.ID)
	assert.Equal(t, creator, d.Creator)
	assert.True(t, d.Acceptor.IsZero())
	assert.False(t, d.Accepted)
	assert.False(t, d.Deleted)
	assert.Equal(t, fixedNow, d.CreatedAt)

	require.NoError(t, st.View(func(tx state.Tx) error {
		got, err := r.Get(tx, "aaa")
		require.NoError(t, err)
		assert.Equal(t, d, got)
		return nil
	}))
}

func TestCreate_Validation(t *testing.T) {
	r, st := newRegistry(false)
	require.NoError(t, run(st, func(tx state.Tx) error {
		_, err := r.Create(tx, "aaa", creator, 100)
		return err
	}))

	tests := []struct {
		name    string
		id      string
		caller  account.Account
		deposit uint64
		wantErr error
	}{
		{"duplicate", "aaa", stranger, 100, ErrDuplicate},
		{"zero deposit", "bbb", creator, 0, ErrZeroDeposit},
		{"zero caller", "bbb", account.Zero, 100, ErrZeroAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(st, func(tx state.Tx) error {
				_, err := r.Create(tx, tt.id, tt.caller, tt.deposit)
				return err
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreate_SequentialIDs(t *testing.T) {
	r, st := newRegistry(false)

	// A caller-chosen "2" must be skipped by the allocator.
	require.NoError(t, run(st, func(tx state.Tx) error {
		_, err := r.Create(tx, "2", creator, 10)
		return err
	}))

	var ids []string
	for i := 0; i < 3; i++ {
		require.NoError(t, run(st, func(tx state.Tx) error {
			d, err := r.Create(tx, "", creator, 10)
			if err == nil {
				ids = append(ids, d.ID)
			}
			return err
		}))
	}
	assert.Equal(t, []string{"1", "3", "4"}, ids)
}

func TestAccept(t *testing.T) {
	r, st := newRegistry(false)
	require.NoError(t, run(st, func(tx state.Tx) error {
		_, err := r.Create(tx, "aaa", creator, 100)
		return err
	}))

	require.NoError(t, run(st, func(tx state.Tx) error {
		d, err := r.Accept(tx, "aaa", acceptor)
		require.NoError(t, err)
		assert.Equal(t, acceptor, d.Acceptor)
		assert.True(t, d.Accepted)
		assert.True(t, d.IsParty(acceptor))
		assert.True(t, d.IsParty(creator))
		assert.False(t, d.IsParty(stranger))
		return nil
	}))

	// accept then accept again fails, whoever calls.
	for _, caller := range []account.Account{acceptor, stranger} {
		err := run(st, func(tx state.Tx) error {
			_, err := r.Accept(tx, "aaa", caller)
			return err
		})
		assert.ErrorIs(t, err, ErrAlreadyAccepted)
	}
}

func TestAccept_Errors(t *testing.T) {
	r, st := newRegistry(false)
	require.NoError(t, run(st, func(tx state.Tx) error {
		if _, err := r.Create(tx, "open", creator, 100); err != nil {
			return err
		}
		if _, err := r.Create(tx, "gone", creator, 100); err != nil {
			return err
		}
		_, err := r.Delete(tx, "gone", creator)
		return err
	}))

	tests := []struct {
		name    string
		id      string
		caller  account.Account
		wantErr error
	}{
		{"missing", "nope", acceptor, ErrNotFound},
		{"deleted", "gone", acceptor, ErrDeleted},
		{"self accept", "open", creator, ErrSelfAccept},
		{"zero caller", "open", account.Zero, ErrZeroAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(st, func(tx state.Tx) error {
				_, err := r.Accept(tx, tt.id, tt.caller)
				return err
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDelete(t *testing.T) {
	r, st := newRegistry(false)
	require.NoError(t, run(st, func(tx state.Tx) error {
		_, err := r.Create(tx, "aaa", creator, 100)
		return err
	}))

	err := run(st, func(tx state.Tx) error {
		_, err := r.Delete(tx, "aaa", stranger)
		return err
	})
	assert.ErrorIs(t, err, ErrNotCreator)

	require.NoError(t, run(st, func(tx state.Tx) error {
		d, err := r.Delete(tx, "aaa", creator)
		require.NoError(t, err)
		assert.True(t, d.Deleted)
		return nil
	}))

	err = run(st, func(tx state.Tx) error {
		_, err := r.Delete(tx, "aaa", creator)
		return err
	})
	assert.ErrorIs(t, err, ErrDeleted)
}

func TestDelete_AcceptedDemand(t *testing.T) {
	tests := []struct {
		name    string
		allow   bool
		wantErr error
	}{
		{"rejected by default", false, ErrAlreadyAccepted},
		{"allowed when configured", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, st := newRegistry(tt.allow)
			require.NoError(t, run(st, func(tx state.Tx) error {
				if _, err := r.Create(tx, "aaa", creator, 100); err != nil {
					return err
				}
				_, err := r.Accept(tx, "aaa", acceptor)
				return err
			}))

			err := run(st, func(tx state.Tx) error {
				_, err := r.Delete(tx, "aaa", creator)
				return err
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestForEach(t *testing.T) {
	r, st := newRegistry(false)
	require.NoError(t, run(st, func(tx state.Tx) error {
		for _, id := range []string{"b", "a", "c"} {
			if _, err := r.Create(tx, id, creator, 1); err != nil {
				return err
			}
		}
		return nil
	}))

	var seen []string
	require.NoError(t, st.View(func(tx state.Tx) error {
		return r.ForEach(tx, func(d *Demand) error {
			seen = append(seen, d.ID)
			return nil
		})
	}))
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}
