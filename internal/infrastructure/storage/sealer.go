package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/agrocean/console/internal/core/ports"
)

const sealedPrefix = "sealed:v1:"

// SealedStore encrypts selected keys with XChaCha20-Poly1305 before they
// reach the wrapped store. Other keys pass through unchanged.
type SealedStore struct {
	inner ports.KeyValueStore
	keys  map[string]struct{}
	aead  cipher.AEAD
}

// NewSealedStore wraps inner. secret must be 32 bytes.
func NewSealedStore(inner ports.KeyValueStore, secret []byte, sealedKeys ...string) (*SealedStore, error) {
	aead, err := chacha20poly1305.NewX(secret)
	if err != nil {
		return nil, fmt.Errorf("sealed store: %w", err)
	}
	keys := make(map[string]struct{}, len(sealedKeys))
	for _, k := range sealedKeys {
		keys[k] = struct{}{}
	}
	return &SealedStore{inner: inner, keys: keys, aead: aead}, nil
}

func (s *SealedStore) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	values, err := s.inner.GetMany(ctx, keys...)
	if err != nil {
		return nil, err
	}
	for k, v := range values {
		if !s.sealed(k) {
			continue
		}
		plain, err := s.open(k, v)
		if err != nil {
			// Unreadable values are reported as absent; the session store
			// then discards the pair.
			delete(values, k)
			continue
		}
		values[k] = plain
	}
	return values, nil
}

func (s *SealedStore) SetMany(ctx context.Context, values map[string]string) error {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if !s.sealed(k) {
			out[k] = v
			continue
		}
		sealed, err := s.seal(k, v)
		if err != nil {
			return err
		}
		out[k] = sealed
	}
	return s.inner.SetMany(ctx, out)
}

func (s *SealedStore) DeleteMany(ctx context.Context, keys ...string) error {
	return s.inner.DeleteMany(ctx, keys...)
}

func (s *SealedStore) sealed(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// seal binds the ciphertext to its key name so values cannot be swapped
// between keys.
func (s *SealedStore) seal(key, plain string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("sealed store: nonce: %w", err)
	}
	box := s.aead.Seal(nonce, nonce, []byte(plain), []byte(key))
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(box), nil
}

func (s *SealedStore) open(key, value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return "", errors.New("sealed store: value is not sealed")
	}
	box, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("sealed store: %w", err)
	}
	if len(box) < s.aead.NonceSize() {
		return "", errors.New("sealed store: value too short")
	}
	nonce, ciphertext := box[:s.aead.NonceSize()], box[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", fmt.Errorf("sealed store: %w", err)
	}
	return string(plain), nil
}
