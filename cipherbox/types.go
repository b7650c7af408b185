// Package cipherbox implements the TLS record-layer bulk cipher: the
// null, block-CBC, and AEAD-GCM framing that turns a plaintext fragment
// into the bytes that go on the wire, and back. It is deliberately blind
// to the handshake, key exchange, and certificate machinery that
// configures it - a CipherBox is constructed once per direction with an
// already-negotiated key, IV, and protocol version, and is driven record
// by record for the lifetime of a cipher spec.
package cipherbox

import "fmt"

// ProtocolVersion is a totally ordered TLS/SSL version tag. Ordering
// gates behavior: explicit IVs appear at TLS 1.1+, and SSL 3.0 relaxes
// the padding check.
type ProtocolVersion uint16

const (
	VersionSSL30 ProtocolVersion = 0x0300
	VersionTLS10 ProtocolVersion = 0x0301
	VersionTLS11 ProtocolVersion = 0x0302
	VersionTLS12 ProtocolVersion = 0x0303
)

func (v ProtocolVersion) AtLeast(other ProtocolVersion) bool { return v >= other }

func (v ProtocolVersion) String() string {
	switch v {
	case VersionSSL30:
		return "SSL3.0"
	case VersionTLS10:
		return "TLS1.0"
	case VersionTLS11:
		return "TLS1.1"
	case VersionTLS12:
		return "TLS1.2"
	default:
		return fmt.Sprintf("0x%04x", uint16(v))
	}
}

// ContentType is the TLS record content type, used only as an input to
// AEAD additional authenticated data construction here.
type ContentType uint8

const (
	ContentTypeChangeCipherSpec ContentType = 20
	ContentTypeAlert            ContentType = 21
	ContentTypeHandshake        ContentType = 22
	ContentTypeApplicationData  ContentType = 23
)

// Direction is which way a single CipherBox runs. A connection owns two
// boxes, one per direction; a box is never reused across directions.
type Direction uint8

const (
	DirectionEncrypt Direction = 1
	DirectionDecrypt Direction = 2
)

// Authenticator is the external contract CipherBox leans on for
// everything sequence-number- and AAD-shaped. Ownership of the AAD
// encoding lives entirely here; CipherBox passes the returned bytes to
// the primitive unexamined.
type Authenticator interface {
	// SequenceNumber returns the current 8-byte monotonic counter for
	// this direction. It does not advance the counter.
	SequenceNumber() uint64

	// MACLen returns the detached MAC length for non-AEAD suites, or 0
	// for AEAD suites (where the tag is part of the cipher, not a
	// separate MAC).
	MACLen() int

	// AcquireAuthenticationBytes returns the AEAD additional
	// authenticated data for the record about to be processed, and
	// advances the sequence number as a side effect. Must be called
	// exactly once per record, before the corresponding Encrypt or
	// Decrypt call.
	AcquireAuthenticationBytes(contentType ContentType, plaintextLength int) []byte
}
