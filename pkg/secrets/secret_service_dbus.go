//go:build linux || freebsd || openbsd || netbsd || dragonfly

package secrets

import (
	"github.com/godbus/dbus/v5"
	ss "github.com/zalando/go-keyring/secret_service"
)

const (
	secretServiceName = "org.freedesktop.secrets"
	secretServicePath = "/org/freedesktop/secrets"
)

type dbusSecretService struct {
	svc     *ss.SecretService
	service dbus.BusObject
}

func dialSecretService() (secretServiceConn, error) {
	svc, err := ss.NewSecretService()
	if err != nil {
		return nil, err
	}
	return &dbusSecretService{
		svc:     svc,
		service: svc.Object(secretServiceName, secretServicePath),
	}, nil
}

// Search asks the service itself rather than a single collection, so items
// stored outside the login collection are found too. Unlocked items come
// first; locked ones are unlocked on read.
func (d *dbusSecretService) Search(attributes map[string]string) ([]dbus.ObjectPath, error) {
	var unlocked, locked []dbus.ObjectPath
	call := d.service.Call("org.freedesktop.Secret.Service.SearchItems", 0, attributes)
	err := call.Store(&unlocked, &locked)
	if err != nil {
		return nil, err
	}
	return append(unlocked, locked...), nil
}

func (d *dbusSecretService) Secret(item dbus.ObjectPath) ([]byte, error) {
	session, err := d.svc.OpenSession()
	if err != nil {
		return nil, err
	}
	defer d.svc.Close(session)

	if err := d.svc.Unlock(item); err != nil {
		return nil, err
	}
	secret, err := d.svc.GetSecret(item, session.Path())
	if err != nil {
		return nil, err
	}
	return secret.Value, nil
}

func (d *dbusSecretService) Create(label string, attributes map[string]string, value []byte) error {
	collection := d.svc.GetLoginCollection()
	if err := d.svc.Unlock(collection.Path()); err != nil {
		return err
	}
	session, err := d.svc.OpenSession()
	if err != nil {
		return err
	}
	defer d.svc.Close(session)

	return d.svc.CreateItem(collection, label, attributes, ss.NewSecret(session.Path(), string(value)))
}

func (d *dbusSecretService) Remove(item dbus.ObjectPath) error {
	return d.svc.Delete(item)
}
