// Package escrow is the entry point of the margin engine. Every public
// operation on Engine runs as one atomic unit of work: its ledger, registry,
// margin, transaction and pool mutations commit together or not at all, and
// its events reach sinks only after the commit.
package escrow

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/config"
	"github.com/bitfsorg/libmargin-go/demand"
	"github.com/bitfsorg/libmargin-go/events"
	"github.com/bitfsorg/libmargin-go/ledger"
	"github.com/bitfsorg/libmargin-go/logging"
	"github.com/bitfsorg/libmargin-go/margin"
	"github.com/bitfsorg/libmargin-go/revshare"
	"github.com/bitfsorg/libmargin-go/reward"
	"github.com/bitfsorg/libmargin-go/settlement"
	"github.com/bitfsorg/libmargin-go/state"
	"github.com/bitfsorg/libmargin-go/whitelist"
)

// File names under the data directory.
const (
	DBFile        = "margin.db"
	WhitelistFile = "whitelist.json"
)

// Engine is the two-party escrow engine.
type Engine struct {
	store     state.Store
	ownsStore bool
	redis     *redis.Client // owned when Open dialed it
	cfg       config.Config
	self      account.Account // settlement identity, always allowed by the gate
	admin     account.Account
	platform  account.Account

	log      *zap.Logger
	sinks    events.Fanout
	pubMu    sync.Mutex // held from inside a committing write until its events are published
	transfer Transferer
	gate     whitelist.Gate
	list     *whitelist.List // nil when a custom gate is installed
	now      func() time.Time
	rewards  bool

	funds   *ledger.Ledger
	demands *demand.Registry
	margins *margin.Book
	pools   *revshare.Pools
	machine *settlement.Machine
	issuer  *reward.Issuer
	journal *events.Journal
}

// New builds an engine over store. cfg is validated and its percentages are
// fixed for the engine's lifetime. The caller keeps ownership of store.
// A transferer given through WithTransferer is wrapped in a circuit breaker
// unless cfg.TransferBreakerFailures is 0 or it is already a BreakerTransferer.
func New(store state.Store, cfg config.Config, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	e := &Engine{
		store:   store,
		cfg:     cfg,
		self:    account.Service("margin/settlement"),
		log:     zap.NewNop(),
		now:     time.Now,
		rewards: true,
	}
	var err error
	if cfg.AdminAccount != "" {
		if e.admin, err = account.Parse(cfg.AdminAccount); err != nil {
			return nil, err
		}
	}
	if cfg.PlatformAccount != "" {
		if e.platform, err = account.Parse(cfg.PlatformAccount); err != nil {
			return nil, err
		}
	}

	for _, opt := range opts {
		opt(e)
	}
	if _, wrapped := e.transfer.(*BreakerTransferer); e.transfer != nil && !wrapped && cfg.TransferBreakerFailures > 0 {
		e.transfer = NewBreakerTransferer(e.transfer, uint32(cfg.TransferBreakerFailures),
			time.Duration(cfg.TransferBreakerTimeout)*time.Second, e.log)
	}
	if e.gate == nil {
		e.list = whitelist.NewList(e.admin)
		e.gate = e.list
	}
	gate := whitelist.Any{whitelist.Fixed{e.self, e.admin}, e.gate}

	e.funds = ledger.New(ledger.AssetMargin)
	e.demands = demand.NewRegistry(cfg.AllowDeleteAccepted, e.now)
	e.margins = margin.NewBook(gate, e.funds, cfg.MinAcceptorRatioBps, cfg.MaxAcceptorRatioBps)
	e.pools, err = revshare.NewPools(gate, e.funds, revshare.Config{
		Platform:           e.platform,
		ProfitPlatformPct:  cfg.ProfitPlatformPct,
		DestroyPlatformPct: cfg.DestroyPlatformPct,
		Policy:             revshare.Policy(cfg.PoolWithdrawPolicy),
	})
	if err != nil {
		return nil, err
	}
	e.machine, err = settlement.NewMachine(e.self, e.margins, e.pools, cfg.FulfillFeeBps)
	if err != nil {
		return nil, err
	}
	e.issuer = reward.NewIssuer(gate, cfg.RewardAmount, cfg.RewardDecrement)
	e.journal = events.NewJournal(e.now)

	e.log.Debug("engine ready",
		zap.String("network", cfg.Network),
		zap.Uint64("fulfill_fee_bps", cfg.FulfillFeeBps),
		zap.Uint64("profit_platform_pct", cfg.ProfitPlatformPct),
		zap.Uint64("destroy_platform_pct", cfg.DestroyPlatformPct),
		zap.String("pool_withdraw_policy", cfg.PoolWithdrawPolicy),
	)
	return e, nil
}

// Open builds an engine persisted under cfg.DataDir: a bbolt database and a
// JSON whitelist administered by cfg.AdminAccount. Unless WithLogger is given,
// logs go to cfg.LogFile at cfg.LogLevel. Committed events are logged, and
// appended to cfg.RedisStream when cfg.RedisAddr is set, with accounts
// rendered as addresses for cfg.Network.
func Open(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	var admin account.Account
	if cfg.AdminAccount != "" {
		if admin, err = account.Parse(cfg.AdminAccount); err != nil {
			return nil, err
		}
	}
	list, err := whitelist.LoadList(filepath.Join(cfg.DataDir, WhitelistFile), admin)
	if err != nil {
		return nil, err
	}

	store, err := state.OpenBoltStore(filepath.Join(cfg.DataDir, DBFile))
	if err != nil {
		return nil, err
	}

	format := events.AddressAccounts(cfg.IsMainnet())
	base := []Option{WithLogger(log), WithWhitelist(list), WithSink(events.NewLogSink(log, format))}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		base = append(base, WithSink(events.NewRedisSink(rdb, cfg.RedisStream, format, log)))
	}

	e, err := New(store, cfg, append(base, opts...)...)
	if err != nil {
		_ = store.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}
	e.ownsStore = true
	e.redis = rdb
	return e, nil
}

// Close releases the store and Redis client if the engine opened them.
func (e *Engine) Close() error {
	_ = e.log.Sync()
	if e.redis != nil {
		_ = e.redis.Close()
	}
	if !e.ownsStore {
		return nil
	}
	return e.store.Close()
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Identity returns the account the engine settles as.
func (e *Engine) Identity() account.Account {
	return e.self
}

// Whitelist returns the owner-administered list, or nil when a custom gate
// was installed with WithWhitelist.
func (e *Engine) Whitelist() *whitelist.List {
	return e.list
}

// unit is one unit of work. Events appended to it are journaled in the same
// transaction and published once it commits.
type unit struct {
	tx      state.Tx
	journal *events.Journal
	pending []events.Event
}

func (u *unit) emit(ev events.Event) error {
	stored, err := u.journal.Append(u.tx, ev)
	if err != nil {
		return err
	}
	u.pending = append(u.pending, stored)
	return nil
}

// update runs fn as one unit of work. Sinks receive committed events in
// journal order and must not call back into the engine.
func (e *Engine) update(ctx context.Context, op string, fields []zap.Field, fn func(u *unit) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		pending []events.Event
		held    bool
	)
	err := e.store.Update(func(tx state.Tx) error {
		u := &unit{tx: tx, journal: e.journal}
		if err := fn(u); err != nil {
			return err
		}
		pending = u.pending
		// Taken while this unit still holds the store's writer lock, so the
		// next unit cannot publish before this one.
		e.pubMu.Lock()
		held = true
		return nil
	})
	if held {
		defer e.pubMu.Unlock()
	}
	if err != nil {
		e.log.Debug(op+" rejected", append(fields,
			zap.Error(err),
			zap.Stringer("category", Category(err)),
		)...)
		return err
	}

	e.log.Debug(op, fields...)
	for _, ev := range pending {
		e.sinks.Publish(ev)
	}
	return nil
}

// view runs fn in a read-only transaction.
func (e *Engine) view(ctx context.Context, fn func(tx state.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.View(fn)
}

func opFields(demandID string, caller account.Account) []zap.Field {
	fields := make([]zap.Field, 0, 4)
	if demandID != "" {
		fields = append(fields, zap.String("demand_id", demandID))
	}
	if !caller.IsZero() {
		fields = append(fields, zap.Stringer("caller", caller))
	}
	return fields
}
