package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/out/storetest"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-statement-ledger/pkg/keylock"
)

// brokenStore 讀取正常，寫入一律失敗
type brokenStore struct {
	usecase.TransactionStore
}

func (brokenStore) Append(ctx context.Context, drafts ...domain.TransactionDraft) ([]domain.Transaction, error) {
	return nil, domain.NewStorageError("append", errors.New("disk full"))
}

func setup(t *testing.T) (*memory.Directory, *memory.TransactionStore) {
	t.Helper()
	dir, err := memory.NewDirectory(nil)
	if err != nil {
		t.Fatal(err)
	}
	store, err := memory.NewTransactionStore(nil)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

func TestLedgerServiceLogsOperations(t *testing.T) {
	ctx := context.Background()
	dir, store := setup(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ledger := usecase.NewLedgerService(dir, store, keylock.NewLocal(), logger)

	acc := storetest.MustAccount(t, storetest.Backend{Accounts: dir, Store: store}, "a")
	if _, err := ledger.Deposit(ctx, acc, decimal.NewFromInt(10), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.Withdraw(ctx, acc, decimal.NewFromInt(11), ""); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("err=%v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"msg":"deposit posted"`) {
		t.Fatalf("missing deposit log: %s", out)
	}
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, `"balance":"10"`) {
		t.Fatalf("missing insufficient funds warning: %s", out)
	}
}

func TestStorageFailurePropagates(t *testing.T) {
	ctx := context.Background()
	dir, store := setup(t)
	backend := storetest.Backend{Accounts: dir, Store: store}
	a := storetest.MustAccount(t, backend, "a")
	b := storetest.MustAccount(t, backend, "b")
	seed := usecase.NewLedgerService(dir, store, keylock.NewLocal(), storetest.DiscardLogger())
	if _, err := seed.Deposit(ctx, a, decimal.NewFromInt(100), ""); err != nil {
		t.Fatal(err)
	}

	ledger := usecase.NewLedgerService(dir, brokenStore{store}, keylock.NewLocal(), storetest.DiscardLogger())
	checks := map[string]func() error{
		"deposit": func() error {
			_, err := ledger.Deposit(ctx, a, decimal.NewFromInt(1), "")
			return err
		},
		"withdraw": func() error {
			_, err := ledger.Withdraw(ctx, a, decimal.NewFromInt(1), "")
			return err
		},
		"transfer": func() error {
			_, err := ledger.Transfer(ctx, a, b, decimal.NewFromInt(1), "")
			return err
		},
	}
	for name, call := range checks {
		err := call()
		if !errors.Is(err, domain.ErrStorageFailure) {
			t.Fatalf("%s err=%v want storage failure", name, err)
		}
		if domain.KindOf(err) != domain.KindStorageFailure {
			t.Fatalf("%s kind=%s", name, domain.KindOf(err))
		}
	}

	balance, err := ledger.GetBalance(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if !balance.Balance.Equal(decimal.NewFromInt(100)) || len(balance.Statements) != 1 {
		t.Fatalf("balance changed: %+v", balance)
	}
}

func TestLockTimeoutAborts(t *testing.T) {
	dir, store := setup(t)
	backend := storetest.Backend{Accounts: dir, Store: store}
	acc := storetest.MustAccount(t, backend, "a")
	locker := keylock.NewLocal()
	ledger := usecase.NewLedgerService(dir, store, locker, storetest.DiscardLogger())

	unlock, err := locker.Lock(context.Background(), acc)
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ledger.Deposit(ctx, acc, decimal.NewFromInt(1), ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
	if n, _ := store.ListByAccount(context.Background(), acc); len(n) != 0 {
		t.Fatalf("%d records written", len(n))
	}
}

func TestBalanceCalculator(t *testing.T) {
	ctx := context.Background()
	dir, store := setup(t)
	backend := storetest.Backend{Accounts: dir, Store: store}
	acc := storetest.MustAccount(t, backend, "a")
	calc := usecase.NewBalanceCalculator(dir, store)

	got, err := calc.GetBalance(ctx, acc)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Balance.IsZero() || len(got.Statements) != 0 || got.AccountID != acc {
		t.Fatalf("empty balance %+v", got)
	}

	d, _ := domain.NewDeposit(acc, decimal.RequireFromString("3.5"), "")
	w, _ := domain.NewWithdrawal(acc, decimal.RequireFromString("1.25"), "")
	if _, err := store.Append(ctx, d); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Append(ctx, w); err != nil {
		t.Fatal(err)
	}

	got, err = calc.GetBalance(ctx, acc)
	if err != nil {
		t.Fatal(err)
	}
	current, err := calc.Current(ctx, acc)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Balance.Equal(decimal.RequireFromString("2.25")) || !current.Equal(got.Balance) {
		t.Fatalf("balance=%s current=%s", got.Balance, current)
	}

	if _, err := calc.Current(ctx, uuid.NewString()); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestAccountService(t *testing.T) {
	ctx := context.Background()
	dir, _ := setup(t)
	svc := usecase.NewAccountService(dir, nil)

	account, err := svc.Register(ctx, "  Alice ", "Alice@Example.com")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if account.Name != "Alice" || account.Email != "alice@example.com" {
		t.Fatalf("account %+v", account)
	}
	if _, err := uuid.Parse(account.ID); err != nil {
		t.Fatalf("id %q: %v", account.ID, err)
	}

	if _, err := svc.Register(ctx, "Alice 2", "alice@example.com"); !errors.Is(err, domain.ErrAccountAlreadyExists) {
		t.Fatalf("duplicate err=%v", err)
	}
	if _, err := svc.Register(ctx, "", "x@example.com"); !errors.Is(err, domain.ErrInvalidAccount) {
		t.Fatalf("invalid err=%v", err)
	}

	profile, err := svc.Profile(ctx, account.ID)
	if err != nil || profile.Email != account.Email {
		t.Fatalf("Profile=%+v err=%v", profile, err)
	}
	if _, err := svc.Profile(ctx, "nobody"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("err=%v", err)
	}
}
