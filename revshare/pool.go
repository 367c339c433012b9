package revshare

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/ledger"
	"github.com/bitfsorg/libmargin-go/state"
	"github.com/bitfsorg/libmargin-go/whitelist"
)

var poolBucket = []byte("pools")

// Config fixes the split percentages and withdrawal policy of both pools.
type Config struct {
	Platform           account.Account // receives WithdrawPlatform payouts
	ProfitPlatformPct  uint64
	DestroyPlatformPct uint64
	Policy             Policy
}

// Pools owns the Profit Pool and the Destroy Fund Pool. Share and balance
// mutations by settlement go through the gate; withdrawals are paid out to
// the funds ledger.
type Pools struct {
	gate  whitelist.Gate
	funds *ledger.Ledger
	cfg   Config
}

// NewPools validates cfg and returns the pools.
func NewPools(gate whitelist.Gate, funds *ledger.Ledger, cfg Config) (*Pools, error) {
	if cfg.ProfitPlatformPct > 100 || cfg.DestroyPlatformPct > 100 {
		return nil, ErrInvalidPercentage
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyPooled
	}
	if cfg.Policy != PolicyPooled && cfg.Policy != PolicyProportional {
		return nil, fmt.Errorf("revshare: unknown policy %q", cfg.Policy)
	}
	return &Pools{gate: gate, funds: funds, cfg: cfg}, nil
}

// PlatformPct returns the platform cut of kind's inflow.
func (p *Pools) PlatformPct(kind Kind) uint64 {
	if kind == KindDestroy {
		return p.cfg.DestroyPlatformPct
	}
	return p.cfg.ProfitPlatformPct
}

// Get returns the pool state. A pool that never received anything is empty.
func (p *Pools) Get(tx state.Tx, kind Kind) (*Pool, error) {
	if !kind.valid() {
		return nil, ErrUnknownPool
	}
	pool := &Pool{Kind: kind}
	err := state.GetGob(tx, poolBucket, poolKey(kind), pool)
	if err != nil && !errors.Is(err, state.ErrNotFound) {
		return nil, err
	}
	return pool, nil
}

// AddShare gives acct one more share of kind and returns its new share count.
func (p *Pools) AddShare(tx state.Tx, caller account.Account, kind Kind, acct account.Account) (uint64, error) {
	if err := whitelist.Require(p.gate, caller); err != nil {
		return 0, err
	}
	if acct.IsZero() {
		return 0, ErrZeroAccount
	}
	pool, err := p.Get(tx, kind)
	if err != nil {
		return 0, err
	}
	reg, err := p.Registry(tx, kind)
	if err != nil {
		return 0, err
	}
	if err := ValidateShareConservation(reg.Entries, pool.TotalShares); err != nil {
		return 0, err
	}
	share, err := reg.Add(acct)
	if err != nil {
		return 0, err
	}

	pool.TotalShares = reg.TotalShares
	if err := p.putRegistry(tx, reg); err != nil {
		return 0, err
	}
	if err := p.put(tx, pool); err != nil {
		return 0, err
	}
	return share, nil
}

// AssignIncoming splits amount between the platform balance and the pending
// user pool at arrival and returns the two cuts.
func (p *Pools) AssignIncoming(tx state.Tx, caller account.Account, kind Kind, amount uint64) (platform, users uint64, err error) {
	if err := whitelist.Require(p.gate, caller); err != nil {
		return 0, 0, err
	}
	if amount == 0 {
		return 0, 0, ErrZeroAmount
	}
	pool, err := p.Get(tx, kind)
	if err != nil {
		return 0, 0, err
	}
	platform, users, err = Split(amount, p.PlatformPct(kind))
	if err != nil {
		return 0, 0, err
	}
	if pool.PlatformBalance > math.MaxUint64-platform ||
		pool.PendingUserPool > math.MaxUint64-users ||
		pool.UserInflow > math.MaxUint64-users {
		return 0, 0, ErrOverflow
	}

	pool.PlatformBalance += platform
	pool.PendingUserPool += users
	pool.UserInflow += users
	if err := p.put(tx, pool); err != nil {
		return 0, 0, err
	}
	return platform, users, nil
}

// WithdrawPlatform pays the whole platform balance of kind to the configured
// platform account. The caller must be that account or whitelisted.
func (p *Pools) WithdrawPlatform(tx state.Tx, caller account.Account, kind Kind) (uint64, error) {
	if p.cfg.Platform.IsZero() {
		return 0, ErrNoPlatform
	}
	if caller != p.cfg.Platform && (p.gate == nil || !p.gate.IsAllowed(caller)) {
		return 0, ErrUnauthorized
	}
	pool, err := p.Get(tx, kind)
	if err != nil {
		return 0, err
	}
	if pool.PlatformBalance == 0 {
		return 0, ErrNoProfit
	}

	amount := pool.PlatformBalance
	pool.PlatformBalance = 0
	if err := p.funds.Credit(tx, p.cfg.Platform, amount); err != nil {
		return 0, err
	}
	if err := p.put(tx, pool); err != nil {
		return 0, err
	}
	return amount, nil
}

// WithdrawUserShare pays amount from kind's user pool to caller, who must
// hold at least one share. Under PolicyProportional the amount is also
// capped by the caller's entitlement.
func (p *Pools) WithdrawUserShare(tx state.Tx, caller account.Account, kind Kind, amount uint64) error {
	pool, err := p.Get(tx, kind)
	if err != nil {
		return err
	}
	share, err := p.ShareOf(tx, kind, caller)
	if err != nil {
		return err
	}
	if share == 0 {
		return ErrNoShares
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if amount > pool.PendingUserPool {
		return fmt.Errorf("%w: requested %d, pool holds %d", ErrInsufficientPoolFunds, amount, pool.PendingUserPool)
	}

	withdrawn, err := getUint(tx, withdrawnBucket(kind), caller[:])
	if err != nil {
		return err
	}
	if p.cfg.Policy == PolicyProportional {
		ent, err := p.Entitlement(tx, kind, caller)
		if err != nil {
			return err
		}
		if amount > ent {
			return fmt.Errorf("%w: requested %d, entitled to %d", ErrExceedsEntitlement, amount, ent)
		}
	}

	pool.PendingUserPool -= amount
	if err := putUint(tx, withdrawnBucket(kind), caller[:], withdrawn+amount); err != nil {
		return err
	}
	if err := p.funds.Credit(tx, caller, amount); err != nil {
		return err
	}
	return p.put(tx, pool)
}

// Entitlement returns what acct may still withdraw under proportional
// accounting: its share-weighted part of all user inflow less what it has
// already withdrawn, floored at zero.
func (p *Pools) Entitlement(tx state.Tx, kind Kind, acct account.Account) (uint64, error) {
	pool, err := p.Get(tx, kind)
	if err != nil {
		return 0, err
	}
	if pool.UserInflow == 0 || pool.TotalShares == 0 {
		return 0, nil
	}
	entries, err := p.Shareholders(tx, kind)
	if err != nil {
		return 0, err
	}
	if err := ValidateShareConservation(entries, pool.TotalShares); err != nil {
		return 0, err
	}
	dists, err := DistributeRevenue(pool.UserInflow, entries, pool.TotalShares)
	if err != nil {
		return 0, err
	}
	if err := ValidateDistribution(dists, entries, pool.UserInflow); err != nil {
		return 0, err
	}
	withdrawn, err := getUint(tx, withdrawnBucket(kind), acct[:])
	if err != nil {
		return 0, err
	}
	for _, d := range dists {
		if d.Account != acct {
			continue
		}
		if d.Amount <= withdrawn {
			return 0, nil
		}
		return d.Amount - withdrawn, nil
	}
	return 0, nil
}

// Total sums the value held across both pools.
func (p *Pools) Total(tx state.Tx) (uint64, error) {
	var total uint64
	for _, k := range Kinds {
		pool, err := p.Get(tx, k)
		if err != nil {
			return 0, err
		}
		total += pool.Total()
	}
	return total, nil
}

func (p *Pools) put(tx state.Tx, pool *Pool) error {
	return state.PutGob(tx, poolBucket, poolKey(pool.Kind), pool)
}

func poolKey(kind Kind) []byte {
	return []byte(kind.String())
}

func withdrawnBucket(kind Kind) []byte {
	return []byte("pools/" + kind.String() + "/withdrawn")
}

func getUint(tx state.Tx, bucket, key []byte) (uint64, error) {
	data := tx.Get(bucket, key)
	if data == nil {
		return 0, nil
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("revshare: corrupt counter %s/%x", bucket, key)
	}
	return binary.BigEndian.Uint64(data), nil
}

func putUint(tx state.Tx, bucket, key []byte, v uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return tx.Put(bucket, key, buf)
}
