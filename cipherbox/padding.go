package cipherbox

// addPadding appends TLS-style CBC padding to plain so that the result's
// length is a positive multiple of blockSize. padLen is chosen as small
// as possible; the appended padLen+1 bytes all equal padLen.
func addPadding(plain []byte, blockSize int) []byte {
	padLen := (blockSize - (len(plain)+1)%blockSize) % blockSize
	out := make([]byte, len(plain)+padLen+1)
	copy(out, plain)
	for i := len(plain); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

// removePadding strips TLS/SSL3 CBC padding from padded in constant time
// with respect to the padding-length byte: the number of byte comparisons
// and memory accesses performed is independent of the actual padding
// value, bounded by a fixed 256-iteration scan. This defeats a timing or
// branch-count oracle that distinguishes "padding too long" from
// "padding content mismatched" - it does not defend against
// microarchitectural (speculative-execution) side channels, which are
// out of scope for a software-only constant-time implementation.
//
// tagLen is the minimum number of bytes (MAC or AEAD tag) that must
// remain after padding is stripped. version gates strictness: SSL 3.0
// only checks the padding length is in range, TLS requires every padding
// byte to match.
func removePadding(padded []byte, tagLen int, blockSize int, version ProtocolVersion) (newLen int, ok bool) {
	padLen := int(padded[len(padded)-1])
	candidateLen := len(padded) - (padLen + 1)

	tooShort := candidateLen < tagLen

	// Always scan as if there were padLen+1 bytes to check, even when
	// candidateLen is already known to be invalid, so the number of
	// memory accesses does not depend on padLen.
	scanLen := padLen + 1
	if scanLen > 256 {
		scanLen = 256
	}

	var missed, matched int
	for i := 0; i < 256; i++ {
		idx := len(padded) - 1 - i
		inScan := i < scanLen
		inBounds := idx >= 0
		var b byte
		if inBounds {
			b = padded[idx]
		}
		match := b == byte(padLen)
		switch {
		case !inScan:
			// outside the logical scan window; touch the byte (if
			// any) but don't count it, keeping iteration count fixed
			_ = match
		case match:
			matched++
		default:
			missed++
		}
	}

	switch version {
	case VersionSSL30:
		ok = !tooShort && padLen <= blockSize
	default: // TLS 1.0+
		ok = !tooShort && missed == 0
	}

	if !ok {
		return 0, false
	}
	return candidateLen, true
}
