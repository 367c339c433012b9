package revshare

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/bitfsorg/libmargin-go/account"
)

const (
	registryHeaderSize = 13 // kind(1) + total_shares(8) + num_entries(4)
	registryEntrySize  = 28 // account(20) + share(8)
)

// RegistryState is the shareholder set of one pool. Entries are kept sorted
// by account and their shares sum to TotalShares.
type RegistryState struct {
	Kind        Kind
	TotalShares uint64
	Entries     []ShareEntry
}

// ShareOf returns acct's share count, zero when it holds none.
func (r *RegistryState) ShareOf(acct account.Account) uint64 {
	if i, ok := r.find(acct); ok {
		return r.Entries[i].Share
	}
	return 0
}

// Add gives acct one more share and returns its new count.
func (r *RegistryState) Add(acct account.Account) (uint64, error) {
	if r.TotalShares == math.MaxUint64 {
		return 0, ErrOverflow
	}
	i, ok := r.find(acct)
	if !ok {
		r.Entries = append(r.Entries, ShareEntry{})
		copy(r.Entries[i+1:], r.Entries[i:])
		r.Entries[i] = ShareEntry{Account: acct}
	}
	r.Entries[i].Share++
	r.TotalShares++
	return r.Entries[i].Share, nil
}

func (r *RegistryState) find(acct account.Account) (int, bool) {
	i := sort.Search(len(r.Entries), func(i int) bool {
		return string(r.Entries[i].Account[:]) >= string(acct[:])
	})
	return i, i < len(r.Entries) && r.Entries[i].Account == acct
}

// SerializeRegistry serializes a RegistryState to binary format.
func SerializeRegistry(state *RegistryState) ([]byte, error) {
	if len(state.Entries) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d entries", ErrTooManyEntries, len(state.Entries))
	}
	buf := make([]byte, registryHeaderSize+registryEntrySize*len(state.Entries))
	offset := 0

	buf[offset] = byte(state.Kind)
	offset++

	binary.BigEndian.PutUint64(buf[offset:offset+8], state.TotalShares)
	offset += 8

	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(state.Entries)))
	offset += 4

	for _, entry := range state.Entries {
		copy(buf[offset:offset+20], entry.Account[:])
		offset += 20
		binary.BigEndian.PutUint64(buf[offset:offset+8], entry.Share)
		offset += 8
	}
	return buf, nil
}

// DeserializeRegistry deserializes binary data into a RegistryState and
// checks that the entry shares add up to the recorded total.
func DeserializeRegistry(data []byte) (*RegistryState, error) {
	if len(data) < registryHeaderSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidRegistryData, len(data))
	}
	offset := 0

	state := &RegistryState{Kind: Kind(data[offset])}
	offset++

	state.TotalShares = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	numEntries := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4

	expectedSize := registryHeaderSize + registryEntrySize*numEntries
	if len(data) != expectedSize {
		return nil, fmt.Errorf("%w: expected %d bytes for %d entries, got %d",
			ErrInvalidRegistryData, expectedSize, numEntries, len(data))
	}

	state.Entries = make([]ShareEntry, numEntries)
	for i := 0; i < numEntries; i++ {
		copy(state.Entries[i].Account[:], data[offset:offset+20])
		offset += 20
		state.Entries[i].Share = binary.BigEndian.Uint64(data[offset : offset+8])
		offset += 8
	}

	if err := ValidateShareConservation(state.Entries, state.TotalShares); err != nil {
		return nil, err
	}
	return state, nil
}
