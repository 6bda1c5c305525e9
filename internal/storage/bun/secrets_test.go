package bunrepo

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	iface "github.com/goliatone/go-hatool/pkg/interfaces/secrets"
	"github.com/goliatone/go-hatool/pkg/secrets"
	"github.com/uptrace/bun"
)

func setupSecretDB(t *testing.T) *bun.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "secrets.db")
	db, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSecretStoreRoundTrip(t *testing.T) {
	db := setupSecretDB(t)
	store := NewSecretStore(db)
	ctx := context.Background()

	id := iface.Identity{Schema: secrets.SchemaName, Host: "h", Port: "8123", User: "bearer"}
	rec := iface.Record{
		Identity: id,
		Version:  time.Now().UTC().Format(secrets.VersionLayout),
		Label:    "h:8123:bearer",
		Cipher:   []byte("cipher"),
		Nonce:    []byte("nonce"),
		Metadata: map[string]any{"k": "v"},
	}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.GetLatest(ctx, id)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if string(got.Cipher) != "cipher" {
		t.Fatalf("unexpected cipher %s", got.Cipher)
	}
	if got.Label != "h:8123:bearer" {
		t.Fatalf("unexpected label %s", got.Label)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetLatest(ctx, id); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected no rows after delete, got %v", err)
	}
}

func TestSecretStoreUpsertsSameVersion(t *testing.T) {
	db := setupSecretDB(t)
	store := NewSecretStore(db)
	ctx := context.Background()

	id := iface.Identity{Schema: secrets.SchemaName, Host: "h", Port: "8123", User: "bearer"}
	rec := iface.Record{Identity: id, Version: "v1", Label: "l", Cipher: []byte("one"), Nonce: []byte("n")}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	rec.Cipher = []byte("two")
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := store.GetLatest(ctx, id)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if string(got.Cipher) != "two" {
		t.Fatalf("expected upserted cipher, got %s", got.Cipher)
	}
	rows, err := db.NewSelect().Model((*secretRecord)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected a single row, got %d", rows)
	}
}

func TestSecretStoreLatestIsLastInserted(t *testing.T) {
	db := setupSecretDB(t)
	store := NewSecretStore(db)
	ctx := context.Background()

	id := iface.Identity{Schema: secrets.SchemaName, Host: "h", Port: "8123", User: "bearer"}
	// RFC3339Nano trims trailing zeros, so these sort backwards as text.
	older := iface.Record{Identity: id, Version: "2026-10-18T15:00:00.5Z", Label: "l", Cipher: []byte("old"), Nonce: []byte("n")}
	newer := iface.Record{Identity: id, Version: "2026-10-18T15:00:00.50001Z", Label: "l", Cipher: []byte("new"), Nonce: []byte("n")}
	for _, rec := range []iface.Record{older, newer} {
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("put %s: %v", rec.Version, err)
		}
	}
	got, err := store.GetLatest(ctx, id)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if got.Version != newer.Version || string(got.Cipher) != "new" {
		t.Fatalf("expected newest record, got version %s", got.Version)
	}
}

func TestEncryptedProviderOverSQLite(t *testing.T) {
	db := setupSecretDB(t)
	prov, err := secrets.NewEncryptedStoreProvider(NewSecretStore(db), bytes.Repeat([]byte{7}, secrets.KeySize))
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	ref := secrets.BearerReference("h", 8123)
	if _, err := prov.Put(ref, []byte("tok")); err != nil {
		t.Fatalf("put: %v", err)
	}
	token, err := secrets.LookupBearer(prov, "h", 8123)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if token != "tok" {
		t.Fatalf("expected tok, got %q", token)
	}
	if _, err := secrets.LookupBearer(prov, "h", 8124); !secrets.IsNotFound(err) {
		t.Fatalf("expected not found for unknown port, got %v", err)
	}
}

func TestEncryptedProviderOverSQLiteReturnsReplacedToken(t *testing.T) {
	db := setupSecretDB(t)
	prov, err := secrets.NewEncryptedStoreProvider(NewSecretStore(db), bytes.Repeat([]byte{7}, secrets.KeySize))
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	ref := secrets.BearerReference("h", 8123)
	for _, token := range []string{"first", "second", "third"} {
		if _, err := prov.Put(ref, []byte(token)); err != nil {
			t.Fatalf("put %s: %v", token, err)
		}
	}
	token, err := secrets.LookupBearer(prov, "h", 8123)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if token != "third" {
		t.Fatalf("expected the last stored token, got %q", token)
	}
}
