package secrets

import (
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

// ErrServiceUnavailable is returned when no Secret Service is reachable on
// the session bus.
var ErrServiceUnavailable = errors.New("secrets: secret service unavailable")

// secretServiceConn is the slice of the freedesktop Secret Service API the
// provider needs. Search matches items by exact attributes.
type secretServiceConn interface {
	Search(attributes map[string]string) ([]dbus.ObjectPath, error)
	Secret(item dbus.ObjectPath) ([]byte, error)
	Create(label string, attributes map[string]string, value []byte) error
	Remove(item dbus.ObjectPath) error
}

// SecretServiceProvider resolves secrets from the desktop keyring
// (GNOME Keyring, KWallet) over D-Bus, using the same schema attributes
// libsecret writes.
type SecretServiceProvider struct {
	conn secretServiceConn
	now  func() time.Time
}

// NewSecretServiceProvider connects to the session bus Secret Service.
func NewSecretServiceProvider() (*SecretServiceProvider, error) {
	conn, err := dialSecretService()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return newSecretServiceProvider(conn), nil
}

func newSecretServiceProvider(conn secretServiceConn) *SecretServiceProvider {
	return &SecretServiceProvider{
		conn: conn,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the first item matching the reference attributes. The
// Secret Service has no notion of versions, so ref.Version is ignored.
func (p *SecretServiceProvider) Get(ref Reference) (SecretValue, error) {
	if err := ValidateReference(ref); err != nil {
		return SecretValue{}, err
	}
	items, err := p.conn.Search(ref.Attributes())
	if err != nil {
		return SecretValue{}, fmt.Errorf("secret service search: %w", err)
	}
	if len(items) == 0 {
		return SecretValue{}, ErrNotFound
	}
	data, err := p.conn.Secret(items[0])
	if err != nil {
		return SecretValue{}, fmt.Errorf("secret service get: %w", err)
	}
	if len(data) == 0 {
		return SecretValue{}, ErrNotFound
	}
	return SecretValue{
		Data:      data,
		Retrieved: p.now(),
		Metadata:  map[string]any{"item": string(items[0])},
	}, nil
}

func (p *SecretServiceProvider) Put(ref Reference, value []byte) (string, error) {
	if err := ValidateReference(ref); err != nil {
		return "", err
	}
	if len(value) == 0 {
		return "", ErrEmptyValue
	}
	if err := p.conn.Create(ref.Label(), ref.Attributes(), value); err != nil {
		return "", fmt.Errorf("secret service store: %w", err)
	}
	return "", nil
}

func (p *SecretServiceProvider) Delete(ref Reference) error {
	if err := ValidateReference(ref); err != nil {
		return err
	}
	items, err := p.conn.Search(ref.Attributes())
	if err != nil {
		return fmt.Errorf("secret service search: %w", err)
	}
	for _, item := range items {
		if err := p.conn.Remove(item); err != nil {
			return fmt.Errorf("secret service delete: %w", err)
		}
	}
	return nil
}

func (p *SecretServiceProvider) Describe(ref Reference) (map[string]any, error) {
	if err := ValidateReference(ref); err != nil {
		return nil, err
	}
	items, err := p.conn.Search(ref.Attributes())
	if err != nil {
		return nil, fmt.Errorf("secret service search: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return map[string]any{
		"label":   ref.Label(),
		"schema":  ref.Schema,
		"matches": len(items),
	}, nil
}
