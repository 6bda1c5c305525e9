package secrets

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrNotFound    = errors.New("secrets: not found")
	ErrInvalidRef  = errors.New("secrets: invalid reference")
	ErrInvalidPort = errors.New("secrets: invalid port")
	ErrUnsupported = errors.New("secrets: unsupported operation")
	ErrEmptyValue  = errors.New("secrets: empty value")
)

// ValidateReference performs basic checks on a reference.
func ValidateReference(ref Reference) error {
	if strings.TrimSpace(ref.Schema) == "" || strings.TrimSpace(ref.Host) == "" || strings.TrimSpace(ref.User) == "" {
		return ErrInvalidRef
	}
	port, err := strconv.Atoi(ref.Port)
	if err != nil || port <= 0 || port > 65535 {
		return ErrInvalidPort
	}
	return nil
}
