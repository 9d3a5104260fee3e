package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"strings"
)

// configKey derives the 32-byte AES key from CONFIG_ENCRYPTION_KEY. The env
// value is hashed rather than used directly so any non-empty string works.
func configKey() []byte {
	sum := sha256.Sum256([]byte(os.Getenv("CONFIG_ENCRYPTION_KEY")))
	return sum[:]
}

// EncryptConfig seals plaintext with AES-GCM. The random nonce is prepended
// to the ciphertext and the whole envelope is base64 encoded.
func EncryptConfig(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(configKey())
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptConfig opens an envelope produced by EncryptConfig.
func DecryptConfig(envelope string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(configKey())
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("envelope too short")
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// MaskSecret is the only outward representation of a stored secret: bullets
// for everything but the last four characters.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return strings.Repeat("•", len(trimmed))
	}
	hidden := len(trimmed) - 4
	if hidden < 6 {
		hidden = 6
	}
	return strings.Repeat("•", hidden) + trimmed[len(trimmed)-4:]
}
