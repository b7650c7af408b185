package cipherbox

import "github.com/tlscore/tlscore/provider"

// BulkCipher describes one negotiable record-layer cipher, the way
// crypto/tls's (and utls's) cipherSuite table describes a cipher suite's
// bulk-cipher half - name, wire transformation string, framing shape, and
// the derived sizes CipherBox needs to frame records correctly.
type BulkCipher struct {
	Name           string
	Transformation string
	Type           provider.CipherType
	IVSize         int // record IV size on the wire
	FixedIVSize    int // implicit nonce size, AEAD only
	TagSize        int // AEAD authentication tag, bytes
	BlockSize      int // derived: 1 for stream/AEAD, cipher block size for BLOCK
	Allowed        bool
}

var (
	CipherNull = BulkCipher{
		Name:      "NULL",
		Type:      provider.CipherTypeStream,
		BlockSize: 1,
		Allowed:   true,
	}

	CipherRC4_128 = BulkCipher{
		Name:           "RC4_128",
		Transformation: "RC4",
		Type:           provider.CipherTypeStream,
		BlockSize:      1,
		Allowed:        true,
	}

	Cipher3DESEDECBC = BulkCipher{
		Name:           "3DES_EDE_CBC",
		Transformation: "DESede/CBC/NoPadding",
		Type:           provider.CipherTypeBlock,
		IVSize:         8,
		BlockSize:      8,
		Allowed:        true,
	}

	CipherAES128CBC = BulkCipher{
		Name:           "AES_128_CBC",
		Transformation: "AES/CBC/NoPadding",
		Type:           provider.CipherTypeBlock,
		IVSize:         16,
		BlockSize:      16,
		Allowed:        true,
	}

	CipherAES256CBC = BulkCipher{
		Name:           "AES_256_CBC",
		Transformation: "AES/CBC/NoPadding",
		Type:           provider.CipherTypeBlock,
		IVSize:         16,
		BlockSize:      16,
		Allowed:        true,
	}

	CipherAES128GCM = BulkCipher{
		Name:           "AES_128_GCM",
		Transformation: "AES/GCM/NoPadding",
		Type:           provider.CipherTypeAEAD,
		IVSize:         12,
		FixedIVSize:    4,
		TagSize:        16,
		BlockSize:      1,
		Allowed:        true,
	}

	CipherAES256GCM = BulkCipher{
		Name:           "AES_256_GCM",
		Transformation: "AES/GCM/NoPadding",
		Type:           provider.CipherTypeAEAD,
		IVSize:         12,
		FixedIVSize:    4,
		TagSize:        16,
		BlockSize:      1,
		Allowed:        true,
	}
)
