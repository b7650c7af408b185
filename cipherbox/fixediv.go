package cipherbox

import "sync"

// fixedZeroIVs is the process-wide table of zero IVs used when a
// TLS 1.1+ CBC box (of either direction) is constructed without an initial
// IV: TLS 1.1+ ships an explicit per-record IV, so the box's own initial IV
// is inert, and a shared zero mask avoids spending per-connection
// randomness on a value that is immediately discarded. Populated lazily
// and monotonically - every writer for a given size writes the same
// all-zero slice, so concurrent first-touch is safe without a dedicated
// lock per size.
var (
	fixedZeroIVMu sync.Mutex
	fixedZeroIVs  = map[int][]byte{}
)

func fixedZeroIV(size int) []byte {
	fixedZeroIVMu.Lock()
	defer fixedZeroIVMu.Unlock()
	iv, ok := fixedZeroIVs[size]
	if !ok {
		iv = make([]byte, size)
		fixedZeroIVs[size] = iv
	}
	// Return a copy: callers may pass this into a primitive that treats
	// it as mutable working storage, and the cached slice must never be
	// observed as anything but all-zero.
	out := make([]byte, size)
	copy(out, iv)
	return out
}
