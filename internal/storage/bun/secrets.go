package bunrepo

import (
	"context"
	"time"

	iface "github.com/goliatone/go-hatool/pkg/interfaces/secrets"
	"github.com/uptrace/bun"
)

type secretRecord struct {
	bun.BaseModel `bun:"table:secrets"`

	ID        int64          `bun:",pk,autoincrement"`
	Schema    string         `bun:"schema_name,notnull,unique:secret_identity"`
	Host      string         `bun:"ha_host,notnull,unique:secret_identity"`
	Port      string         `bun:"ha_port,notnull,unique:secret_identity"`
	User      string         `bun:"ha_user,notnull,unique:secret_identity"`
	Version   string         `bun:",notnull,unique:secret_identity"`
	Label     string         `bun:",notnull"`
	Cipher    []byte         `bun:",notnull"`
	Nonce     []byte         `bun:",notnull"`
	Metadata  map[string]any `bun:",type:jsonb"`
	CreatedAt time.Time      `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time      `bun:",nullzero,notnull,default:current_timestamp"`
}

// SecretStore persists encrypted secret records in a SQL database.
type SecretStore struct {
	db *bun.DB
}

func NewSecretStore(db *bun.DB) *SecretStore {
	return &SecretStore{db: db}
}

// CreateSchema creates the secrets table when it does not exist yet.
func (s *SecretStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*secretRecord)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *SecretStore) Put(ctx context.Context, rec iface.Record) error {
	model := toSecretRecord(rec)
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (schema_name, ha_host, ha_port, ha_user, version) DO UPDATE").
		Set("label = EXCLUDED.label").
		Set("cipher = EXCLUDED.cipher").
		Set("nonce = EXCLUDED.nonce").
		Set("metadata = EXCLUDED.metadata").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	return err
}

// GetLatest returns the most recently inserted version. Rewriting an
// existing version keeps its position.
func (s *SecretStore) GetLatest(ctx context.Context, id iface.Identity) (iface.Record, error) {
	var rec secretRecord
	err := s.db.NewSelect().
		Model(&rec).
		Where("schema_name = ? AND ha_host = ? AND ha_port = ? AND ha_user = ?", id.Schema, id.Host, id.Port, id.User).
		OrderExpr("id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return iface.Record{}, err
	}
	return fromSecretRecord(rec), nil
}

// Delete removes every version stored for the identity.
func (s *SecretStore) Delete(ctx context.Context, id iface.Identity) error {
	_, err := s.db.NewDelete().
		Model((*secretRecord)(nil)).
		Where("schema_name = ? AND ha_host = ? AND ha_port = ? AND ha_user = ?", id.Schema, id.Host, id.Port, id.User).
		Exec(ctx)
	return err
}

func toSecretRecord(rec iface.Record) *secretRecord {
	return &secretRecord{
		Schema:   rec.Schema,
		Host:     rec.Host,
		Port:     rec.Port,
		User:     rec.User,
		Version:  rec.Version,
		Label:    rec.Label,
		Cipher:   rec.Cipher,
		Nonce:    rec.Nonce,
		Metadata: rec.Metadata,
	}
}

func fromSecretRecord(rec secretRecord) iface.Record {
	return iface.Record{
		Identity: iface.Identity{
			Schema: rec.Schema,
			Host:   rec.Host,
			Port:   rec.Port,
			User:   rec.User,
		},
		Version:   rec.Version,
		Label:     rec.Label,
		Cipher:    rec.Cipher,
		Nonce:     rec.Nonce,
		Metadata:  rec.Metadata,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
