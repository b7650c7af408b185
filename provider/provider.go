// Package provider defines the PrimitiveProvider boundary: an abstraction
// over block/stream/AEAD ciphers that the cipherbox package drives but
// never implements cryptography itself behind. The concrete primitives
// (AES, 3DES, RC4, GCM) are out of core scope; this package's job is the
// seam, plus one default implementor backed by the standard library so
// the rest of the module has something concrete to run against.
package provider

import "errors"

// CipherMode selects the direction a Cipher was initialized for.
type CipherMode int

const (
	ModeEncrypt CipherMode = iota + 1
	ModeDecrypt
)

// CipherType classifies a primitive's framing shape.
type CipherType int

const (
	CipherTypeStream CipherType = iota + 1
	CipherTypeBlock
	CipherTypeAEAD
)

func (t CipherType) String() string {
	switch t {
	case CipherTypeStream:
		return "STREAM"
	case CipherTypeBlock:
		return "BLOCK"
	case CipherTypeAEAD:
		return "AEAD"
	default:
		return "UNKNOWN"
	}
}

// GCMParams parameterizes an AEAD Cipher's Init call: the full nonce
// (fixed || explicit) and the authentication tag size in bits, mirroring
// javax.crypto.spec.GCMParameterSpec as named in the design this package
// implements.
type GCMParams struct {
	Nonce       []byte
	TagSizeBits int
}

// SecureRandom is the randomness source a Cipher implementation may
// consult during Init (e.g. to generate an IV it did not receive).
type SecureRandom interface {
	NextBytes(dst []byte)
}

// Cipher is one initialized primitive instance. A STREAM Cipher, and a
// BLOCK Cipher below TLS 1.1, is initialized once per CipherBox lifetime
// and driven via Update for every record; an AEAD Cipher, and a BLOCK
// Cipher with a per-record explicit IV (TLS 1.1+), is (re)initialized once
// per record.
type Cipher interface {
	Init(mode CipherMode, key []byte, params any, random SecureRandom) error
	Update(in []byte) ([]byte, error)
	DoFinal(in []byte) ([]byte, error)
	UpdateAAD(aad []byte)
	BlockSize() int
	OutputSize(inputLen int) int
}

// PrimitiveProvider constructs Ciphers by transformation name, e.g.
// "AES/CBC/NoPadding" or "AES/GCM/NoPadding".
type PrimitiveProvider interface {
	CreateCipher(transformation string) (Cipher, error)
}

// ErrUnsupportedAlgorithm is returned by CreateCipher when the provider
// does not recognize the requested transformation.
var ErrUnsupportedAlgorithm = errors.New("provider: unsupported algorithm")
