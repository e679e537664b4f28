package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/pscheid92/vybe/internal/domain"
)

const keySize = 32

var ErrCiphertextTooShort = errors.New("ciphertext too short")

type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type AESGCM struct {
	gcm cipher.AEAD
}

// NewAESGCM builds a cipher from a hex-encoded 32 byte key.
func NewAESGCM(hexKey string) (*AESGCM, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key hex: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCM{gcm: gcm}, nil
}

func (c *AESGCM) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// nonce || ciphertext || tag
	sealed := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

func (c *AESGCM) Decrypt(ciphertext string) (string, error) {
	buffer, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode hex: %w", err)
	}

	nonceSize := c.gcm.NonceSize()
	if len(buffer) < nonceSize {
		return "", ErrCiphertextTooShort
	}

	nonce, sealed := buffer[:nonceSize], buffer[nonceSize:]
	plain, err := c.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plain), nil
}

// EncryptedStore encrypts values on the way into the wrapped store and decrypts
// them on the way out. Keys are stored as given.
type EncryptedStore struct {
	next   domain.KeyValueStore
	cipher Cipher
}

var _ domain.KeyValueStore = (*EncryptedStore)(nil)

func NewEncryptedStore(next domain.KeyValueStore, c Cipher) *EncryptedStore {
	return &EncryptedStore{next: next, cipher: c}
}

func (s *EncryptedStore) SetItem(ctx context.Context, key, value string) error {
	sealed, err := s.cipher.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", key, err)
	}
	return s.next.SetItem(ctx, key, sealed)
}

func (s *EncryptedStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := s.next.GetItem(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	value, err := s.cipher.Decrypt(sealed)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt %s: %w", key, err)
	}
	return value, true, nil
}

func (s *EncryptedStore) RemoveItem(ctx context.Context, key string) error {
	return s.next.RemoveItem(ctx, key)
}
