//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package secrets

func dialSecretService() (secretServiceConn, error) {
	return nil, ErrUnsupported
}
