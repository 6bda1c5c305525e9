package secrets

import (
	"errors"
	"testing"
)

func TestStaticProviderRoundTrip(t *testing.T) {
	ref := BearerReference("ha.local", 8123)
	p := NewStaticProvider(nil)
	ver, err := p.Put(ref, []byte("secret"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ver == "" {
		t.Fatalf("expected version to be set")
	}
	val, err := p.Get(ref)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(val.Data) != "secret" {
		t.Fatalf("expected secret, got %s", val.Data)
	}
	if val.Retrieved.IsZero() {
		t.Fatalf("expected retrieved timestamp")
	}
	if err := p.Delete(ref); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := p.Get(ref); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestStaticProviderLatestVersionWins(t *testing.T) {
	ref := BearerReference("ha.local", 8123)
	p := NewStaticProvider(nil)
	old := ref
	old.Version = "2024-01-01"
	newer := ref
	newer.Version = "2025-01-01"
	if _, err := p.Put(old, []byte("old")); err != nil {
		t.Fatalf("put old: %v", err)
	}
	if _, err := p.Put(newer, []byte("new")); err != nil {
		t.Fatalf("put new: %v", err)
	}
	val, err := p.Get(ref)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(val.Data) != "new" {
		t.Fatalf("expected latest value, got %s", val.Data)
	}
	pinned, err := p.Get(old)
	if err != nil {
		t.Fatalf("get pinned: %v", err)
	}
	if string(pinned.Data) != "old" {
		t.Fatalf("expected pinned value, got %s", pinned.Data)
	}
}

func TestValidateReference(t *testing.T) {
	cases := []struct {
		name string
		ref  Reference
		want error
	}{
		{"valid", BearerReference("h", 8123), nil},
		{"missing host", BearerReference("", 8123), ErrInvalidRef},
		{"zero port", BearerReference("h", 0), ErrInvalidPort},
		{"port out of range", BearerReference("h", 70000), ErrInvalidPort},
		{"non numeric port", Reference{Schema: SchemaName, Host: "h", Port: "http", User: UserBearer}, ErrInvalidPort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateReference(tc.ref); err != tc.want {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBearerReferenceAttributes(t *testing.T) {
	attrs := BearerReference("h", 8123).Attributes()
	want := map[string]string{
		"xdg:schema": "info.interfinitydynamics.hatool",
		"ha_host":    "h",
		"ha_port":    "8123",
		"ha_user":    "bearer",
	}
	if len(attrs) != len(want) {
		t.Fatalf("expected %d attributes, got %d", len(want), len(attrs))
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Fatalf("attribute %s: want %q, got %q", k, v, attrs[k])
		}
	}
}

func TestReferenceLabel(t *testing.T) {
	cases := map[string]string{
		"ha.local": "ha.local:8123:bearer",
		"::1":      "::1:8123:bearer",
	}
	for host, want := range cases {
		if got := BearerReference(host, 8123).Label(); got != want {
			t.Fatalf("label for %s: want %q, got %q", host, want, got)
		}
	}
}

func TestLookupBearer(t *testing.T) {
	ref := BearerReference("h", 8123)
	p := NewStaticProvider(map[Reference]SecretValue{
		ref: {Data: []byte("tok\n"), Version: "v1"},
	})
	token, err := LookupBearer(p, "h", 8123)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if token != "tok" {
		t.Fatalf("expected tok, got %q", token)
	}
	if _, err := LookupBearer(p, "h", 8124); !IsNotFound(err) {
		t.Fatalf("expected not found for other port, got %v", err)
	}
	if _, err := LookupBearer(nil, "h", 8123); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported for nil provider, got %v", err)
	}
}
