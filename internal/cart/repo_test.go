package cart

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/grengcry/cart-service/pkg/config"
	"github.com/grengcry/cart-service/pkg/db"
	"github.com/grengcry/cart-service/pkg/db/models"
)

func openTestStore(t *testing.T) *DBSnapshotStore {
	t.Helper()

	if os.Getenv("GRENGCRY_SQLITE_TESTS") == "" {
		t.Skip("GRENGCRY_SQLITE_TESTS is not set")
	}

	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file::memory:?cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.CartRecord{}, &models.CartItem{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return NewDBSnapshotStore(client)
}

func TestDBStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	c := NewCart()
	mustAdd(t, c, line("12", "500 g", "20", 2))
	mustAdd(t, c, line("7", "1 pc", "14.50", 1))

	if err := store.Save(ctx, "sess-1", c.Snapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap == nil || len(snap.Items) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Items[0].ProductID != "12" || snap.Items[1].ProductID != "7" {
		t.Fatalf("insertion order lost: %+v", snap.Items)
	}
	if !snap.Items[1].Price.Equal(decimal.RequireFromString("14.50")) {
		t.Fatalf("price mangled: %s", snap.Items[1].Price)
	}
}

func TestDBStoreSaveReplacesLines(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	c := NewCart()
	mustAdd(t, c, line("12", "500 g", "20", 2))
	if err := store.Save(ctx, "sess-1", c.Snapshot()); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	c.Remove(NewItemKey("12", "500 g"))
	mustAdd(t, c, line("7", "1 pc", "5", 1))
	if err := store.Save(ctx, "sess-1", c.Snapshot()); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	snap, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].ProductID != "7" {
		t.Fatalf("stale lines survived re-save: %+v", snap.Items)
	}
}

func TestDBStoreMissAndDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snap, err := store.Load(ctx, "unknown")
	if err != nil || snap != nil {
		t.Fatalf("expected nil, nil on miss, got %+v, %v", snap, err)
	}

	c := NewCart()
	mustAdd(t, c, line("1", "1 pc", "5", 1))
	if err := store.Save(ctx, "sess-1", c.Snapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	snap, err = store.Load(ctx, "sess-1")
	if err != nil || snap != nil {
		t.Fatalf("snapshot survived delete: %+v, %v", snap, err)
	}

	// deleting an absent cart stays successful
	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("repeat Delete: %v", err)
	}
}
