package secrets

import (
	"errors"
	"strings"
)

// LookupBearer returns the bearer token stored for host:port. A missing
// entry, or one holding only whitespace, yields ErrNotFound.
func LookupBearer(p Provider, host string, port int) (string, error) {
	if p == nil {
		return "", ErrUnsupported
	}
	val, err := p.Get(BearerReference(host, port))
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(val.Data))
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// IsNotFound reports whether err means the secret does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
