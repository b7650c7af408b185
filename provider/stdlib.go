package provider

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/rand"
	"crypto/rc4"
	"fmt"
)

// StdlibProvider is the default PrimitiveProvider, backed entirely by the
// Go standard library's crypto packages - the same packages utls's and
// crypto/tls's cipherSuite tables reach for to implement the handful of
// transformations TLS record layers actually need.
type StdlibProvider struct{}

// NewStdlibProvider returns a PrimitiveProvider with no state of its own;
// every Cipher it creates is independent.
func NewStdlibProvider() *StdlibProvider {
	return &StdlibProvider{}
}

func (p *StdlibProvider) CreateCipher(transformation string) (Cipher, error) {
	switch transformation {
	case "AES/CBC/NoPadding":
		return &blockCipher{newBlock: aes.NewCipher}, nil
	case "AES/GCM/NoPadding":
		return &aeadCipher{newBlock: aes.NewCipher}, nil
	case "DESede/CBC/NoPadding":
		return &blockCipher{newBlock: des.NewTripleDESCipher}, nil
	case "RC4":
		return &streamCipherRC4{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, transformation)
	}
}

// CryptoRandSource adapts crypto/rand to the SecureRandom interface.
type CryptoRandSource struct{}

func (CryptoRandSource) NextBytes(dst []byte) {
	if _, err := rand.Read(dst); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is
		// broken, which is not a recoverable condition for a TLS
		// stack.
		panic(fmt.Sprintf("provider: entropy source failed: %v", err))
	}
}

// --- BLOCK (CBC) ---

type blockCipher struct {
	newBlock func([]byte) (cipher.Block, error)
	block    cipher.Block
	mode     cipher.BlockMode
	cmode    CipherMode
	blockLen int
}

func (c *blockCipher) Init(mode CipherMode, key []byte, params any, random SecureRandom) error {
	block, err := c.newBlock(key)
	if err != nil {
		return err
	}
	iv, _ := params.([]byte)
	if iv == nil {
		iv = make([]byte, block.BlockSize())
		random.NextBytes(iv)
	}
	if len(iv) != block.BlockSize() {
		return fmt.Errorf("provider: iv length %d != block size %d", len(iv), block.BlockSize())
	}
	c.block = block
	c.blockLen = block.BlockSize()
	c.cmode = mode
	switch mode {
	case ModeEncrypt:
		c.mode = cipher.NewCBCEncrypter(block, iv)
	case ModeDecrypt:
		c.mode = cipher.NewCBCDecrypter(block, iv)
	default:
		return fmt.Errorf("provider: unknown cipher mode %d", mode)
	}
	return nil
}

func (c *blockCipher) Update(in []byte) ([]byte, error) {
	if len(in)%c.blockLen != 0 {
		return nil, fmt.Errorf("provider: input length %d not a multiple of block size %d", len(in), c.blockLen)
	}
	out := make([]byte, len(in))
	c.mode.CryptBlocks(out, in)
	return out, nil
}

func (c *blockCipher) DoFinal(in []byte) ([]byte, error) {
	return c.Update(in)
}

func (c *blockCipher) UpdateAAD([]byte) {}

func (c *blockCipher) BlockSize() int { return c.blockLen }

func (c *blockCipher) OutputSize(inputLen int) int { return inputLen }

// --- STREAM (RC4) ---

type streamCipherRC4 struct {
	stream *rc4.Cipher
}

func (c *streamCipherRC4) Init(mode CipherMode, key []byte, params any, random SecureRandom) error {
	stream, err := rc4.NewCipher(key)
	if err != nil {
		return err
	}
	c.stream = stream
	return nil
}

func (c *streamCipherRC4) Update(in []byte) ([]byte, error) {
	out := make([]byte, len(in))
	c.stream.XORKeyStream(out, in)
	return out, nil
}

func (c *streamCipherRC4) DoFinal(in []byte) ([]byte, error) {
	return c.Update(in)
}

func (c *streamCipherRC4) UpdateAAD([]byte) {}

func (c *streamCipherRC4) BlockSize() int { return 1 }

func (c *streamCipherRC4) OutputSize(inputLen int) int { return inputLen }

// --- AEAD (GCM) ---

type aeadCipher struct {
	newBlock func([]byte) (cipher.Block, error)
	gcm      cipher.AEAD
	cmode    CipherMode
	nonce    []byte
	aad      []byte
}

func (c *aeadCipher) Init(mode CipherMode, key []byte, params any, random SecureRandom) error {
	gp, ok := params.(GCMParams)
	if !ok {
		return fmt.Errorf("provider: AEAD init requires GCMParams")
	}
	block, err := c.newBlock(key)
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCMWithTagSize(block, gp.TagSizeBits/8)
	if err != nil {
		return err
	}
	c.gcm = gcm
	c.cmode = mode
	c.nonce = gp.Nonce
	c.aad = nil
	return nil
}

func (c *aeadCipher) Update([]byte) ([]byte, error) {
	return nil, fmt.Errorf("provider: AEAD ciphers do not support Update, only DoFinal")
}

func (c *aeadCipher) DoFinal(in []byte) ([]byte, error) {
	switch c.cmode {
	case ModeEncrypt:
		return c.gcm.Seal(nil, c.nonce, in, c.aad), nil
	case ModeDecrypt:
		out, err := c.gcm.Open(nil, c.nonce, in, c.aad)
		if err != nil {
			// The provider contract requires a single uniform error
			// on tag mismatch; crypto/cipher already returns one
			// opaque error value (cipher.ErrOpen-equivalent) rather
			// than distinguishing sub-causes.
			return nil, fmt.Errorf("provider: AEAD authentication failed")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("provider: unknown cipher mode %d", c.cmode)
	}
}

func (c *aeadCipher) UpdateAAD(aad []byte) {
	c.aad = aad
}

func (c *aeadCipher) BlockSize() int { return 1 }

func (c *aeadCipher) OutputSize(inputLen int) int {
	if c.gcm == nil {
		return inputLen
	}
	if c.cmode == ModeEncrypt {
		return inputLen + c.gcm.Overhead()
	}
	return inputLen - c.gcm.Overhead()
}
