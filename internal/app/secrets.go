package app

import (
	"context"
	"fmt"
	"io"

	bunrepo "github.com/goliatone/go-hatool/internal/storage/bun"
	"github.com/goliatone/go-hatool/pkg/config"
	"github.com/goliatone/go-hatool/pkg/secrets"
)

func defaultSecretsOpener(getenv func(string) string) SecretsOpener {
	return func(ctx context.Context, cfg config.Config) (secrets.Provider, io.Closer, error) {
		return openSecrets(ctx, cfg, getenv)
	}
}

func openSecrets(ctx context.Context, cfg config.Config, getenv func(string) string) (secrets.Provider, io.Closer, error) {
	switch cfg.Secrets.Backend {
	case config.BackendNone:
		return secrets.NopProvider{}, nil, nil
	case config.BackendSQLite:
		key := getenv(cfg.Secrets.KeyEnv)
		if len(key) != secrets.KeySize {
			return nil, nil, fmt.Errorf("secrets: %s must hold a %d byte key, got %d", cfg.Secrets.KeyEnv, secrets.KeySize, len(key))
		}
		db, err := bunrepo.OpenSQLite(ctx, cfg.Secrets.Path)
		if err != nil {
			return nil, nil, err
		}
		provider, err := secrets.NewEncryptedStoreProvider(bunrepo.NewSecretStore(db), []byte(key))
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("secrets: provider: %w", err)
		}
		return provider, db, nil
	default:
		provider, err := secrets.NewSecretServiceProvider()
		if err != nil {
			return nil, nil, err
		}
		return provider, nil, nil
	}
}
