package revshare

import (
	"github.com/bitfsorg/libmargin-go/account"
	"github.com/bitfsorg/libmargin-go/state"
)

func registryKey(kind Kind) []byte {
	return []byte(kind.String() + "/registry")
}

// Registry loads the shareholder set of kind. A pool without shareholders
// has an empty registry.
func (p *Pools) Registry(tx state.Tx, kind Kind) (*RegistryState, error) {
	if !kind.valid() {
		return nil, ErrUnknownPool
	}
	data := tx.Get(poolBucket, registryKey(kind))
	if data == nil {
		return &RegistryState{Kind: kind}, nil
	}
	reg, err := DeserializeRegistry(data)
	if err != nil {
		return nil, err
	}
	if reg.Kind != kind {
		return nil, ErrInvalidRegistryData
	}
	return reg, nil
}

// ShareOf returns acct's cumulative share count in kind.
func (p *Pools) ShareOf(tx state.Tx, kind Kind, acct account.Account) (uint64, error) {
	reg, err := p.Registry(tx, kind)
	if err != nil {
		return 0, err
	}
	return reg.ShareOf(acct), nil
}

// Shareholders lists every account holding shares in kind, ordered by account.
func (p *Pools) Shareholders(tx state.Tx, kind Kind) ([]ShareEntry, error) {
	reg, err := p.Registry(tx, kind)
	if err != nil {
		return nil, err
	}
	return reg.Entries, nil
}

func (p *Pools) putRegistry(tx state.Tx, reg *RegistryState) error {
	data, err := SerializeRegistry(reg)
	if err != nil {
		return err
	}
	return tx.Put(poolBucket, registryKey(reg.Kind), data)
}
