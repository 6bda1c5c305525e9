package secrets

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	iface "github.com/goliatone/go-hatool/pkg/interfaces/secrets"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of the key accepted by NewEncryptedStoreProvider.
const KeySize = chacha20poly1305.KeySize

// EncryptedStoreProvider persists secrets encrypted via a Store.
type EncryptedStoreProvider struct {
	store iface.Store
	aead  cipherSuite
	now   func() time.Time
}

type cipherSuite interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// NewEncryptedStoreProvider builds a provider using the given store and key.
func NewEncryptedStoreProvider(store iface.Store, key []byte) (*EncryptedStoreProvider, error) {
	if store == nil {
		return nil, fmt.Errorf("encrypted provider: store required")
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encrypted provider: key must be %d bytes", KeySize)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &EncryptedStoreProvider{
		store: store,
		aead:  aead,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Get decrypts the latest stored version. ref.Version is not consulted.
func (p *EncryptedStoreProvider) Get(ref Reference) (SecretValue, error) {
	if err := ValidateReference(ref); err != nil {
		return SecretValue{}, err
	}
	rec, err := p.store.GetLatest(context.Background(), ref.identity())
	if err != nil {
		return SecretValue{}, translateStoreError(err)
	}
	// The identity is bound as additional data so a record cannot be
	// replayed under another host or port.
	plain, err := p.aead.Open(nil, rec.Nonce, rec.Cipher, additionalData(rec.Identity))
	if err != nil {
		return SecretValue{}, fmt.Errorf("decrypt: %w", err)
	}
	return SecretValue{
		Data:      plain,
		Version:   rec.Version,
		Retrieved: p.now(),
		Metadata:  rec.Metadata,
	}, nil
}

func (p *EncryptedStoreProvider) Put(ref Reference, value []byte) (string, error) {
	if err := ValidateReference(ref); err != nil {
		return "", err
	}
	if len(value) == 0 {
		return "", ErrEmptyValue
	}
	if ref.Version == "" {
		ref.Version = newVersion(p.now())
	}
	nonce := make([]byte, p.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	id := ref.identity()
	rec := iface.Record{
		Identity: id,
		Version:  ref.Version,
		Label:    ref.Label(),
		Cipher:   p.aead.Seal(nil, nonce, value, additionalData(id)),
		Nonce:    nonce,
		Metadata: map[string]any{"created_at": p.now()},
	}
	if err := p.store.Put(context.Background(), rec); err != nil {
		return "", translateStoreError(err)
	}
	return ref.Version, nil
}

func (p *EncryptedStoreProvider) Delete(ref Reference) error {
	if err := ValidateReference(ref); err != nil {
		return err
	}
	return translateStoreError(p.store.Delete(context.Background(), ref.identity()))
}

func (p *EncryptedStoreProvider) Describe(ref Reference) (map[string]any, error) {
	if err := ValidateReference(ref); err != nil {
		return nil, err
	}
	rec, err := p.store.GetLatest(context.Background(), ref.identity())
	if err != nil {
		return nil, translateStoreError(err)
	}
	return map[string]any{
		"version": rec.Version,
		"label":   rec.Label,
		"meta":    rec.Metadata,
	}, nil
}

func additionalData(id iface.Identity) []byte {
	return []byte(id.Schema + "|" + id.Host + "|" + id.Port + "|" + id.User)
}

func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	default:
		return err
	}
}
