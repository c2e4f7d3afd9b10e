package sqldb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/out/storetest"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-statement-ledger/pkg/sqlite"
)

func openSQLite(t *testing.T, path string) *sqlite.Client {
	t.Helper()
	client, err := sqlite.NewClient(sqlite.Config{Path: path, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("sqlite.NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	if err := Migrate(client.DB()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return client
}

func newBackend(t *testing.T) storetest.Backend {
	t.Helper()
	client := openSQLite(t, filepath.Join(t.TempDir(), "ledger.db"))
	return storetest.Backend{
		Accounts: NewDirectory(client),
		Store:    NewStore(client),
	}
}

func TestStoreContract(t *testing.T) {
	storetest.RunStoreContract(t, newBackend)
}

func TestLedgerProperties(t *testing.T) {
	storetest.RunLedgerProperties(t, newBackend)
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	client := openSQLite(t, path)
	if err := Migrate(client.DB()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	first := openSQLite(t, path)
	backend := storetest.Backend{Accounts: NewDirectory(first), Store: NewStore(first)}
	acc := storetest.MustAccount(t, backend, "a")
	tran, err := storetest.NewLedger(backend).Deposit(ctx, acc, storetest.Dec("12.5"), "salary")
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := openSQLite(t, path)
	store := NewStore(second)
	got, err := store.FindByID(ctx, tran.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Description != "salary" || !got.Amount.Equal(storetest.Dec("12.5")) || got.Sequence != tran.Sequence {
		t.Fatalf("got %+v want %+v", got, tran)
	}
	if !got.CreatedAt.Equal(tran.CreatedAt) {
		t.Fatalf("created_at %s != %s", got.CreatedAt, tran.CreatedAt)
	}
}

func TestClosedDatabaseIsStorageFailure(t *testing.T) {
	ctx := context.Background()
	client := openSQLite(t, filepath.Join(t.TempDir(), "ledger.db"))
	backend := storetest.Backend{Accounts: NewDirectory(client), Store: NewStore(client)}
	acc := storetest.MustAccount(t, backend, "a")
	client.Close()

	d, _ := domain.NewDeposit(acc, storetest.Dec("1"), "")
	if _, err := backend.Store.Append(ctx, d); !errors.Is(err, domain.ErrStorageFailure) {
		t.Fatalf("Append err=%v", err)
	}
	if _, err := backend.Store.SumByAccount(ctx, acc); !errors.Is(err, domain.ErrStorageFailure) {
		t.Fatalf("Sum err=%v", err)
	}
}
