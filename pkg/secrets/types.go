package secrets

import (
	"strconv"
	"time"

	iface "github.com/goliatone/go-hatool/pkg/interfaces/secrets"
)

const (
	// SchemaName is the Secret Service schema bearer tokens are stored under.
	SchemaName = "info.interfinitydynamics.hatool"
	// UserBearer is the fixed ha_user attribute. It is a placeholder, not a username.
	UserBearer = "bearer"

	AttrSchema = "xdg:schema"
	AttrHost   = "ha_host"
	AttrPort   = "ha_port"
	AttrUser   = "ha_user"

	// VersionLayout keeps generated versions fixed width so they sort in
	// time order as plain strings.
	VersionLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Reference identifies a specific secret.
type Reference struct {
	Schema  string
	Host    string
	Port    string
	User    string
	Version string
}

// BearerReference builds the lookup key for the bearer token of a server.
func BearerReference(host string, port int) Reference {
	return Reference{
		Schema: SchemaName,
		Host:   host,
		Port:   strconv.Itoa(port),
		User:   UserBearer,
	}
}

// Attributes renders the reference as a Secret Service attribute map.
func (r Reference) Attributes() map[string]string {
	return map[string]string{
		AttrSchema: r.Schema,
		AttrHost:   r.Host,
		AttrPort:   r.Port,
		AttrUser:   r.User,
	}
}

// Label is the human readable item label, e.g. "ha.local:8123:bearer".
// Hosts are not bracketed, so an IPv6 host renders as "::1:8123:bearer".
func (r Reference) Label() string {
	return r.Host + ":" + r.Port + ":" + r.User
}

func newVersion(t time.Time) string {
	return t.UTC().Format(VersionLayout)
}

func (r Reference) identity() iface.Identity {
	return iface.Identity{Schema: r.Schema, Host: r.Host, Port: r.Port, User: r.User}
}

// SecretValue carries the resolved secret payload.
type SecretValue struct {
	Data      []byte
	Version   string
	Retrieved time.Time
	Metadata  map[string]any
}

// Provider resolves and manages secret values.
type Provider interface {
	Get(ref Reference) (SecretValue, error)
	Put(ref Reference, value []byte) (string, error)
	Delete(ref Reference) error
	Describe(ref Reference) (map[string]any, error) // non-sensitive metadata only
}
