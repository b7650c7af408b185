package cipherbox

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"

	"github.com/tlscore/tlscore/provider"
)

// CipherBox is the record-layer bulk cipher for one direction of one
// connection. It is immutable except for the AEAD/explicit-IV-BLOCK
// per-record reinitialization described below, and is not safe for
// concurrent use - the record layer serializes records per direction, so
// a box is effectively single-threaded by contract, not by lock.
type CipherBox struct {
	version    ProtocolVersion
	bulkCipher BulkCipher
	direction  Direction

	blockSize    int
	fixedIV      []byte // AEAD only
	tagSize      int    // AEAD only
	recordIVSize int    // AEAD only

	key    []byte
	random provider.SecureRandom

	primitive provider.Cipher // nil for NULL; set once for STREAM/BLOCK; (re)Init'd per record for AEAD and BLOCK+TLS1.1+

	closed bool
	logger *zap.Logger
}

func cipherMode(d Direction) provider.CipherMode {
	if d == DirectionEncrypt {
		return provider.ModeEncrypt
	}
	return provider.ModeDecrypt
}

// NewNullCipherBox returns the identity CipherBox used while the
// connection's cipher suite is NULL (e.g. before the first ChangeCipherSpec).
func NewNullCipherBox(direction Direction) *CipherBox {
	return &CipherBox{bulkCipher: CipherNull, direction: direction, blockSize: 1}
}

// NewCipherBox constructs a CipherBox for a negotiated (non-NULL) bulk
// cipher. For AEAD, iv is the fixed IV and must be exactly FixedIVSize
// bytes. For BLOCK at TLS 1.1+, a nil iv is replaced by a process-wide
// zero IV in either direction, since the per-record explicit IV replaces
// it (see DESIGN.md). Otherwise iv is passed to the primitive as given.
func NewCipherBox(
	version ProtocolVersion,
	bc BulkCipher,
	key, iv []byte,
	random provider.SecureRandom,
	direction Direction,
	prov provider.PrimitiveProvider,
	logger *zap.Logger,
) (*CipherBox, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if version == VersionSSL30 {
		return nil, ConfigurationError{Reason: "SSL 3.0 cipher boxes are refused; TLS 1.0+ only"}
	}
	if !bc.Allowed {
		return nil, UnsupportedCipherError{Cipher: bc.Name}
	}

	box := &CipherBox{
		version:    version,
		bulkCipher: bc,
		direction:  direction,
		blockSize:  bc.BlockSize,
		key:        key,
		random:     random,
		logger:     logger,
	}

	switch bc.Type {
	case provider.CipherTypeAEAD:
		if len(iv) != bc.FixedIVSize {
			return nil, ConfigurationError{Reason: fmt.Sprintf("AEAD fixed iv must be %d bytes, got %d", bc.FixedIVSize, len(iv))}
		}
		box.fixedIV = append([]byte(nil), iv...)
		box.tagSize = bc.TagSize
		box.recordIVSize = bc.IVSize - bc.FixedIVSize
		prim, err := prov.CreateCipher(bc.Transformation)
		if err != nil {
			return nil, InitializationFailedError{Cause: err}
		}
		box.primitive = prim // left un-Init'd until the first record
	case provider.CipherTypeBlock:
		if iv == nil && version.AtLeast(VersionTLS11) {
			iv = fixedZeroIV(bc.BlockSize)
		}
		prim, err := prov.CreateCipher(bc.Transformation)
		if err != nil {
			return nil, InitializationFailedError{Cause: err}
		}
		if err := prim.Init(cipherMode(direction), key, iv, random); err != nil {
			return nil, InitializationFailedError{Cause: err}
		}
		box.primitive = prim
	case provider.CipherTypeStream:
		prim, err := prov.CreateCipher(bc.Transformation)
		if err != nil {
			return nil, InitializationFailedError{Cause: err}
		}
		if err := prim.Init(cipherMode(direction), key, iv, random); err != nil {
			return nil, InitializationFailedError{Cause: err}
		}
		box.primitive = prim
	default:
		return nil, InvariantViolationError{Reason: fmt.Sprintf("unknown cipher type %v", bc.Type)}
	}

	return box, nil
}

// usesExplicitIV reports whether this box's BLOCK cipher needs a fresh
// per-record IV rather than chaining from the previous record.
func (c *CipherBox) usesExplicitIV() bool {
	return c.bulkCipher.Type == provider.CipherTypeBlock && c.version.AtLeast(VersionTLS11)
}

// GetExplicitNonceSize returns the number of caller-visible explicit
// nonce/IV bytes this box emits or consumes per record: blockSize for
// BLOCK+TLS1.1+, recordIVSize for AEAD, 0 otherwise.
func (c *CipherBox) GetExplicitNonceSize() int {
	switch {
	case c.usesExplicitIV():
		return c.blockSize
	case c.bulkCipher.Type == provider.CipherTypeAEAD:
		return c.recordIVSize
	default:
		return 0
	}
}

// CreateExplicitNonce prepares the box for the next Encrypt call and
// returns the bytes the caller must prepend to the wire record ahead of
// the ciphertext: a fresh random IV for BLOCK+TLS1.1+, or the 8-byte
// sequence number for AEAD. For NULL/STREAM/BLOCK<TLS1.1 it returns nil.
func (c *CipherBox) CreateExplicitNonce(auth Authenticator, ct ContentType, fragLen int) ([]byte, error) {
	if c.closed {
		return nil, InvariantViolationError{Reason: "CipherBox used after Close"}
	}
	switch {
	case c.usesExplicitIV():
		iv := make([]byte, c.blockSize)
		c.random.NextBytes(iv)
		if err := c.primitive.Init(provider.ModeEncrypt, c.key, iv, c.random); err != nil {
			return nil, InvariantViolationError{Reason: "re-init of BLOCK primitive for explicit IV failed: " + err.Error()}
		}
		return iv, nil
	case c.bulkCipher.Type == provider.CipherTypeAEAD:
		seq := auth.SequenceNumber()
		explicit := encodeSeq(seq, c.recordIVSize)
		nonce := append(append([]byte(nil), c.fixedIV...), explicit...)
		if err := c.primitive.Init(provider.ModeEncrypt, c.key, provider.GCMParams{Nonce: nonce, TagSizeBits: c.tagSize * 8}, c.random); err != nil {
			return nil, InvariantViolationError{Reason: "AEAD re-init for encrypt failed: " + err.Error()}
		}
		aad := auth.AcquireAuthenticationBytes(ct, fragLen)
		c.primitive.UpdateAAD(aad)
		return explicit, nil
	default:
		return nil, nil
	}
}

// ApplyExplicitNonce is the decrypt-side mirror of CreateExplicitNonce:
// it consumes the explicit nonce/IV bytes from the front of buffer,
// (re)initializes the primitive, and returns the remainder of buffer
// (the part Decrypt should be called with).
func (c *CipherBox) ApplyExplicitNonce(auth Authenticator, ct ContentType, buffer []byte) ([]byte, error) {
	if c.closed {
		return nil, InvariantViolationError{Reason: "CipherBox used after Close"}
	}
	switch {
	case c.usesExplicitIV():
		if len(buffer) < c.blockSize {
			countBadRecordMAC()
			return nil, ErrBadRecordMAC
		}
		iv := buffer[:c.blockSize]
		if err := c.primitive.Init(provider.ModeDecrypt, c.key, append([]byte(nil), iv...), c.random); err != nil {
			return nil, InvariantViolationError{Reason: "re-init of BLOCK primitive for explicit IV failed: " + err.Error()}
		}
		return buffer[c.blockSize:], nil
	case c.bulkCipher.Type == provider.CipherTypeAEAD:
		if len(buffer) < c.recordIVSize {
			countBadRecordMAC()
			return nil, ErrBadRecordMAC
		}
		explicit := buffer[:c.recordIVSize]
		nonce := append(append([]byte(nil), c.fixedIV...), explicit...)
		plaintextLen := len(buffer) - c.recordIVSize - c.tagSize
		if plaintextLen < 0 {
			plaintextLen = 0
		}
		if err := c.primitive.Init(provider.ModeDecrypt, c.key, provider.GCMParams{Nonce: nonce, TagSizeBits: c.tagSize * 8}, c.random); err != nil {
			return nil, InvariantViolationError{Reason: "AEAD re-init for decrypt failed: " + err.Error()}
		}
		aad := auth.AcquireAuthenticationBytes(ct, plaintextLen)
		c.primitive.UpdateAAD(aad)
		return buffer[c.recordIVSize:], nil
	default:
		return buffer, nil
	}
}

// Encrypt transforms one plaintext fragment into its ciphertext form.
// For AEAD and explicit-IV BLOCK boxes, CreateExplicitNonce must have
// been called first for this record.
func (c *CipherBox) Encrypt(plain []byte) ([]byte, error) {
	if c.closed {
		return nil, InvariantViolationError{Reason: "CipherBox used after Close"}
	}
	switch c.bulkCipher.Type {
	case provider.CipherTypeStream:
		if c.primitive == nil { // NULL cipher
			out := make([]byte, len(plain))
			copy(out, plain)
			return out, nil
		}
		return c.primitive.Update(plain)
	case provider.CipherTypeBlock:
		padded := addPadding(plain, c.blockSize)
		return c.primitive.Update(padded)
	case provider.CipherTypeAEAD:
		out, err := c.primitive.DoFinal(plain)
		if err != nil {
			return nil, InvariantViolationError{Reason: "AEAD encryption failed: " + err.Error()}
		}
		return out, nil
	default:
		return nil, InvariantViolationError{Reason: "unknown cipher type"}
	}
}

// Decrypt transforms one ciphertext fragment (with any explicit nonce
// already stripped by ApplyExplicitNonce) back into plaintext. macLen is
// the detached MAC length for BLOCK ciphers (0 for AEAD/STREAM/NULL).
// Every failure mode collapses to ErrBadRecordMAC.
func (c *CipherBox) Decrypt(ciphertext []byte, macLen int) ([]byte, error) {
	if c.closed {
		return nil, InvariantViolationError{Reason: "CipherBox used after Close"}
	}
	switch c.bulkCipher.Type {
	case provider.CipherTypeStream:
		if c.primitive == nil { // NULL cipher
			out := make([]byte, len(ciphertext))
			copy(out, ciphertext)
			return out, nil
		}
		return c.primitive.Update(ciphertext)
	case provider.CipherTypeBlock:
		if !sanityCheckCBC(macLen, len(ciphertext), c.blockSize) {
			countBadRecordMAC()
			c.logger.Info("bad_record_mac", zap.Uint64("count", BadRecordMACCount()))
			return nil, ErrBadRecordMAC
		}
		padded, err := c.primitive.Update(ciphertext)
		if err != nil {
			return nil, InvariantViolationError{Reason: "BLOCK decrypt failed on sanity-checked input: " + err.Error()}
		}
		newLen, ok := removePadding(padded, macLen, c.blockSize, c.version)
		if !ok {
			countBadRecordMAC()
			c.logger.Info("bad_record_mac", zap.Uint64("count", BadRecordMACCount()))
			return nil, ErrBadRecordMAC
		}
		return padded[:newLen], nil
	case provider.CipherTypeAEAD:
		out, err := c.primitive.DoFinal(ciphertext)
		if err != nil {
			countBadRecordMAC()
			c.logger.Info("bad_record_mac", zap.Uint64("count", BadRecordMACCount()))
			return nil, ErrBadRecordMAC
		}
		return out, nil
	default:
		return nil, InvariantViolationError{Reason: "unknown cipher type"}
	}
}

// sanityCheckCBC implements spec §4.1's pre-decrypt length check: the
// fragment must be a positive multiple of blockSize and at least
// max(macLen+1, blockSize) bytes. The explicit IV block (TLS1.1+) is
// assumed already stripped by ApplyExplicitNonce before this is called,
// so unlike the single-buffer reference design this does not add a
// second blockSize term for the IV - see DESIGN.md.
func sanityCheckCBC(macLen, fragLen, blockSize int) bool {
	if fragLen <= 0 || fragLen%blockSize != 0 {
		return false
	}
	minSize := macLen + 1
	if blockSize > minSize {
		minSize = blockSize
	}
	return fragLen >= minSize
}

// Close zeroizes retained key material and IVs and marks the box unusable.
// It must be called exactly once, when the connection's cipher suite
// changes or the connection ends.
func (c *CipherBox) Close() error {
	if c.closed {
		return nil
	}
	zero(c.key)
	zero(c.fixedIV)
	c.closed = true
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func encodeSeq(seq uint64, size int) []byte {
	full := make([]byte, 8)
	binary.BigEndian.PutUint64(full, seq)
	if size >= 8 {
		out := make([]byte, size)
		copy(out[size-8:], full)
		return out
	}
	return full[8-size:]
}
