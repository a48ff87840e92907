package storage

import (
	"context"
	"os"
	"testing"
	"time"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("WIPMAP_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("WIPMAP_TEST_PG_DSN is required for integration test")
	}
	return dsn
}

func requireRedis(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("WIPMAP_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WIPMAP_TEST_REDIS_ADDR is required for integration test")
	}
	return addr
}

func TestGormStoreRoundTrip(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	s := NewGormStore(db)
	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	k := Key{X: -9, Y: 9, Fingerprint: 1<<63 + 5}
	_ = db.Exec("DELETE FROM wipmap_tiles WHERE x = ? AND y = ?", k.X, k.Y).Error

	if _, ok, err := s.Get(ctx, k); err != nil || ok {
		t.Fatalf("Get before Put = %v, %v", ok, err)
	}
	for _, doc := range []string{`{"v":1}`, `{"v":2}`} {
		if err := s.Put(ctx, k, []byte(doc)); err != nil {
			t.Fatal(err)
		}
	}
	doc, ok, err := s.Get(ctx, k)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if string(doc) != `{"v":2}` {
		t.Fatalf("doc = %s, want upserted value", doc)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	rc := OpenRedis(requireRedis(t), os.Getenv("WIPMAP_TEST_REDIS_PASS"), 0)
	defer rc.Close()

	ctx := context.Background()
	s := NewRedisStore(rc, "wipmap-test:", time.Minute)
	k := Key{X: 3, Y: 3, Fingerprint: uint64(time.Now().UnixNano())}

	if _, ok, err := s.Get(ctx, k); err != nil || ok {
		t.Fatalf("Get before Put = %v, %v", ok, err)
	}
	if err := s.Put(ctx, k, []byte("doc")); err != nil {
		t.Fatal(err)
	}
	doc, ok, err := s.Get(ctx, k)
	if err != nil || !ok || string(doc) != "doc" {
		t.Fatalf("Get = %q, %v, %v", doc, ok, err)
	}
}

func TestOpenRedisEmptyAddr(t *testing.T) {
	if rc := OpenRedis("", "", 0); rc != nil {
		t.Fatal("expected nil client for empty address")
	}
}
