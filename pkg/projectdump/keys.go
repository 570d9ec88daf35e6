package projectdump

import "strconv"

// PK is a session-unique primary key of one output element.
type PK int64

// Unresolved is the sentinel key for a reference that could not be resolved.
const Unresolved PK = -1

// DefaultSeed is the key allocator seed used when none is configured.
const DefaultSeed int64 = 230

// String renders the key as a decimal string, "-1" for Unresolved.
func (pk PK) String() string {
	return strconv.FormatInt(int64(pk), 10)
}

// IsResolved reports whether pk refers to an element.
func (pk PK) IsResolved() bool {
	return pk != Unresolved
}

// KeyAllocator issues strictly increasing keys starting at seed+1.
// It is not safe for concurrent use; each assembly owns its own allocator.
type KeyAllocator struct {
	seed int64
	last int64
}

// NewKeyAllocator creates an allocator whose first key is seed+1.
func NewKeyAllocator(seed int64) *KeyAllocator {
	return &KeyAllocator{seed: seed, last: seed}
}

// Next returns the next key.
func (a *KeyAllocator) Next() PK {
	a.last++
	return PK(a.last)
}

// Issued returns the number of keys handed out so far.
func (a *KeyAllocator) Issued() int64 {
	return a.last - a.seed
}
