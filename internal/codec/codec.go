// Package codec implements the gateway's wire cipher: AES-128-CBC over
// a key derived as MD5(workingKey), with a fixed IV, hex-encoded on the
// wire. The static IV and MD5 key derivation are contractual; the
// gateway rejects anything else, so they are reproduced bit-for-bit.
package codec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/quantumphp123/CCAvenuePHP/internal/domain"
)

// Fixed IV mandated by the gateway protocol: bytes 0x00..0x0f.
var staticIV = []byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
}

type Codec struct {
	key []byte
}

// New derives the AES key from the merchant working key. The gateway
// uses the raw 16-byte MD5 digest of the working key, not its hex form.
func New(workingKey string) *Codec {
	sum := md5.Sum([]byte(workingKey))
	return &Codec{key: sum[:]}
}

// Encrypt encrypts an ASCII key-value plaintext and returns lowercase
// hex ciphertext. Output is deterministic for a given key and plaintext
// because the IV is static; that is a property of the wire protocol.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: new cipher: %v", domain.ErrCodec, err)
	}

	padded := padPKCS7([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, staticIV).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(ciphertext), nil
}

// Decrypt hex-decodes and decrypts a gateway ciphertext. It fails with
// a domain.ErrCodec-wrapped error on malformed hex, a ciphertext that
// is not a whole number of blocks, or invalid padding after decryption.
func (c *Codec) Decrypt(encrypted string) (string, error) {
	ciphertext, err := hex.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: hex decode: %v", domain.ErrCodec, err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d not a multiple of block size", domain.ErrCodec, len(ciphertext))
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: new cipher: %v", domain.ErrCodec, err)
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, staticIV).CryptBlocks(plain, ciphertext)

	unpadded, err := unpadPKCS7(plain, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCodec, err)
	}
	return string(unpadded), nil
}

func padPKCS7(b []byte, blockSize int) []byte {
	padLen := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func unpadPKCS7(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded data length %d", len(b))
	}
	pad := int(b[len(b)-1])
	if pad < 1 || pad > blockSize {
		return nil, fmt.Errorf("invalid padding value %d", pad)
	}
	for i := 0; i < pad; i++ {
		if b[len(b)-1-i] != byte(pad) {
			return nil, fmt.Errorf("invalid padding bytes")
		}
	}
	return b[:len(b)-pad], nil
}
