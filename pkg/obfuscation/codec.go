package obfuscation

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

const derivationInfo = "sma-roster/person.first_name"

// ErrFormat is returned when a stored value cannot be reversed.
var ErrFormat = errors.New("obfuscated value is malformed")

// Codec conceals short text fields at rest. The same secret always maps a plaintext to
// the same output, so it is an obfuscation scheme and not authenticated encryption.
type Codec struct {
	key   []byte
	nonce []byte
}

// New derives a codec from the configured secret.
func New(secret string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("obfuscation secret missing")
	}
	material := make([]byte, chacha20.KeySize+chacha20.NonceSize)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(derivationInfo))
	if _, err := io.ReadFull(reader, material); err != nil {
		return nil, fmt.Errorf("derive obfuscation key: %w", err)
	}
	return &Codec{
		key:   material[:chacha20.KeySize],
		nonce: material[chacha20.KeySize:],
	}, nil
}

// Obfuscate returns the concealed form of plaintext.
func (c *Codec) Obfuscate(plaintext string) string {
	if plaintext == "" {
		return ""
	}
	buf := []byte(plaintext)
	c.xor(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Deobfuscate reverses Obfuscate. Input that did not come from Obfuscate under the
// same secret yields ErrFormat when it is detectably malformed.
func (c *Codec) Deobfuscate(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	buf, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}
	c.xor(buf)
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: decoded value is not valid utf-8", ErrFormat)
	}
	return string(buf), nil
}

func (c *Codec) xor(buf []byte) {
	// key and nonce sizes are fixed by New, so the constructor cannot fail here.
	stream, err := chacha20.NewUnauthenticatedCipher(c.key, c.nonce)
	if err != nil {
		panic(fmt.Sprintf("obfuscation: %v", err))
	}
	stream.XORKeyStream(buf, buf)
}
