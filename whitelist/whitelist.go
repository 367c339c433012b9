// Package whitelist answers whether an account may perform privileged calls
// such as margin payouts, pool assignments and reward minting.
package whitelist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bitfsorg/libmargin-go/account"
)

// Gate is the capability check injected into every component that guards a
// privileged operation.
type Gate interface {
	IsAllowed(acct account.Account) bool
}

// Require returns ErrNotWhitelisted unless g allows acct. A nil gate allows nobody.
func Require(g Gate, acct account.Account) error {
	if g == nil || !g.IsAllowed(acct) {
		return fmt.Errorf("%w: %s", ErrNotWhitelisted, acct)
	}
	return nil
}

// List is an owner-administered set of allowed accounts. When path is set,
// every successful Grant or Revoke is written to disk as JSON.
type List struct {
	mu      sync.RWMutex
	owner   account.Account
	allowed map[account.Account]struct{}
	path    string
}

type listFile struct {
	Owner   string   `json:"owner"`
	Allowed []string `json:"allowed"`
}

// NewList returns an empty in-memory list administered by owner.
func NewList(owner account.Account) *List {
	return &List{owner: owner, allowed: make(map[account.Account]struct{})}
}

// LoadList reads the list at path, or returns an empty list bound to path if
// the file does not exist yet. The owner passed in always wins over the one on disk.
func LoadList(path string, owner account.Account) (*List, error) {
	l := NewList(owner)
	l.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("whitelist: read: %w", err)
	}

	var f listFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("whitelist: parse: %w", err)
	}
	for _, s := range f.Allowed {
		acct, err := account.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("whitelist: entry %q: %w", s, err)
		}
		l.allowed[acct] = struct{}{}
	}
	return l, nil
}

// Owner returns the administering account.
func (l *List) Owner() account.Account {
	return l.owner
}

// IsAllowed implements Gate.
func (l *List) IsAllowed(acct account.Account) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.allowed[acct]
	return ok
}

// Grant adds acct. Granting an allowed account again is a no-op.
func (l *List) Grant(caller, acct account.Account) error {
	if caller != l.owner || caller.IsZero() {
		return ErrNotOwner
	}
	if acct.IsZero() {
		return ErrZeroAccount
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.allowed[acct]; ok {
		return nil
	}
	l.allowed[acct] = struct{}{}
	if err := l.saveLocked(); err != nil {
		delete(l.allowed, acct)
		return err
	}
	return nil
}

// Revoke removes acct. Revoking an unknown account is a no-op.
func (l *List) Revoke(caller, acct account.Account) error {
	if caller != l.owner || caller.IsZero() {
		return ErrNotOwner
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.allowed[acct]; !ok {
		return nil
	}
	delete(l.allowed, acct)
	if err := l.saveLocked(); err != nil {
		l.allowed[acct] = struct{}{}
		return err
	}
	return nil
}

// Allowed returns the allowed accounts in ascending order.
func (l *List) Allowed() []account.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sortedLocked()
}

// Save writes the list to its path. It is a no-op for in-memory lists.
func (l *List) Save() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.saveLocked()
}

func (l *List) sortedLocked() []account.Account {
	out := make([]account.Account, 0, len(l.allowed))
	for a := range l.allowed {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (l *List) saveLocked() error {
	if l.path == "" {
		return nil
	}
	f := listFile{Owner: l.owner.String()}
	for _, a := range l.sortedLocked() {
		f.Allowed = append(f.Allowed, a.String())
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("whitelist: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("whitelist: create directory: %w", err)
	}
	return os.WriteFile(l.path, data, 0600)
}

// Fixed is a Gate allowing a fixed set of accounts.
type Fixed []account.Account

// IsAllowed implements Gate.
func (f Fixed) IsAllowed(acct account.Account) bool {
	if acct.IsZero() {
		return false
	}
	for _, a := range f {
		if a == acct {
			return true
		}
	}
	return false
}

// Any is a Gate allowing an account if any member gate does.
type Any []Gate

// IsAllowed implements Gate.
func (gs Any) IsAllowed(acct account.Account) bool {
	for _, g := range gs {
		if g != nil && g.IsAllowed(acct) {
			return true
		}
	}
	return false
}
