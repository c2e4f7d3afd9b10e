// Package storetest 提供 AccountDirectory / TransactionStore 的共用測試套件，
// 記憶體與資料庫實作都必須通過同一組測試。
package storetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-statement-ledger/pkg/keylock"
)

// Backend 一組待測的實作
type Backend struct {
	Accounts usecase.AccountDirectory
	Store    usecase.TransactionStore
}

// Factory 每個子測試呼叫一次，回傳全新的空白 Backend
type Factory func(t *testing.T) Backend

// DiscardLogger 測試用，不輸出任何 log
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewLedger 以 Backend 組出 LedgerService
func NewLedger(b Backend) *usecase.LedgerService {
	return usecase.NewLedgerService(b.Accounts, b.Store, keylock.NewLocal(), DiscardLogger())
}

// MustAccount 建立帳戶並回傳 ID
func MustAccount(t *testing.T, b Backend, name string) string {
	t.Helper()
	account, err := domain.NewAccount(name, fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]), time.Now().UTC())
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	if err := b.Accounts.Create(context.Background(), account); err != nil {
		t.Fatalf("Create account: %v", err)
	}
	return account.ID
}

// Dec 測試用的金額字面值
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustDeposit(t *testing.T, b Backend, accountID, amount string) domain.Transaction {
	t.Helper()
	d, err := domain.NewDeposit(accountID, Dec(amount), "Initial transaction")
	if err != nil {
		t.Fatal(err)
	}
	stored, err := b.Store.Append(context.Background(), d)
	if err != nil {
		t.Fatalf("Append deposit: %v", err)
	}
	return stored[0]
}

func mustList(t *testing.T, b Backend, accountID string) []domain.Transaction {
	t.Helper()
	trans, err := b.Store.ListByAccount(context.Background(), accountID)
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	return trans
}

func mustSum(t *testing.T, b Backend, accountID string) decimal.Decimal {
	t.Helper()
	sum, err := b.Store.SumByAccount(context.Background(), accountID)
	if err != nil {
		t.Fatalf("SumByAccount: %v", err)
	}
	return sum
}

func assertAmount(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(Dec(want)) {
		t.Fatalf("%s=%s want %s", what, got, want)
	}
}

// assertConsistent 聚合查詢與逐筆加總必須一致
func assertConsistent(t *testing.T, b Backend, accountID string) decimal.Decimal {
	t.Helper()
	sum := mustSum(t, b, accountID)
	listed := domain.SumAmounts(mustList(t, b, accountID))
	if !sum.Equal(listed) {
		t.Fatalf("SumByAccount=%s but sum(ListByAccount)=%s", sum, listed)
	}
	return sum
}

// RunStoreContract 驗證 AccountDirectory 與 TransactionStore 的基本契約
func RunStoreContract(t *testing.T, newBackend Factory) {
	ctx := context.Background()

	t.Run("DirectoryCreateResolve", func(t *testing.T) {
		b := newBackend(t)
		account, _ := domain.NewAccount("Alice", "alice@example.com", time.Now().UTC())
		if err := b.Accounts.Create(ctx, account); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ok, err := b.Accounts.Exists(ctx, account.ID)
		if err != nil || !ok {
			t.Fatalf("Exists=%v err=%v", ok, err)
		}
		got, err := b.Accounts.Resolve(ctx, account.ID)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got.Name != "Alice" || got.Email != "alice@example.com" {
			t.Fatalf("resolved %+v", got)
		}

		dup, _ := domain.NewAccount("Other", "alice@example.com", time.Now().UTC())
		if err := b.Accounts.Create(ctx, dup); !errors.Is(err, domain.ErrAccountAlreadyExists) {
			t.Fatalf("duplicate email err=%v", err)
		}

		if ok, _ := b.Accounts.Exists(ctx, "missing"); ok {
			t.Fatal("missing account reported as existing")
		}
		if _, err := b.Accounts.Resolve(ctx, "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("Resolve missing err=%v", err)
		}

		MustAccount(t, b, "Bob")
		all, err := b.Accounts.List(ctx)
		if err != nil || len(all) != 2 {
			t.Fatalf("List=%d err=%v", len(all), err)
		}
	})

	t.Run("AppendAssignsIdentityAndOrder", func(t *testing.T) {
		b := newBackend(t)
		acc := MustAccount(t, b, "a")
		first := mustDeposit(t, b, acc, "100")
		second := mustDeposit(t, b, acc, "50")

		if first.ID == uuid.Nil || first.ID == second.ID {
			t.Fatalf("ids %s / %s", first.ID, second.ID)
		}
		if second.Sequence <= first.Sequence {
			t.Fatalf("sequence not increasing: %d then %d", first.Sequence, second.Sequence)
		}

		listed := mustList(t, b, acc)
		if len(listed) != 2 || listed[0].ID != first.ID || listed[1].ID != second.ID {
			t.Fatalf("listed out of order: %+v", listed)
		}
		if listed[0].Type != domain.TransactionTypeDeposit || listed[0].Description != "Initial transaction" {
			t.Fatalf("listed[0]=%+v", listed[0])
		}
		assertAmount(t, "balance", assertConsistent(t, b, acc), "150")
	})

	t.Run("AppendPairIsAtomicAndLinked", func(t *testing.T) {
		b := newBackend(t)
		sender := MustAccount(t, b, "sender")
		receiver := MustAccount(t, b, "receiver")
		mustDeposit(t, b, sender, "900")

		pair, _ := domain.NewTransferPair(sender, receiver, Dec("800"), "rent")
		stored, err := b.Store.Append(ctx, pair.Drafts()...)
		if err != nil {
			t.Fatalf("Append pair: %v", err)
		}
		if len(stored) != 2 {
			t.Fatalf("stored %d records", len(stored))
		}
		if stored[0].AccountID != receiver || stored[0].SenderID != sender {
			t.Fatalf("received side %+v", stored[0])
		}
		if stored[1].AccountID != sender || stored[1].ReceiverID != receiver {
			t.Fatalf("transferred side %+v", stored[1])
		}
		assertAmount(t, "sender", assertConsistent(t, b, sender), "100")
		assertAmount(t, "receiver", assertConsistent(t, b, receiver), "800")
	})

	t.Run("AppendRejectsOverdraftWithoutSideEffects", func(t *testing.T) {
		b := newBackend(t)
		sender := MustAccount(t, b, "sender")
		receiver := MustAccount(t, b, "receiver")
		mustDeposit(t, b, sender, "900")

		pair, _ := domain.NewTransferPair(sender, receiver, Dec("900.01"), "")
		if _, err := b.Store.Append(ctx, pair.Drafts()...); !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("err=%v want ErrInsufficientFunds", err)
		}
		w, _ := domain.NewWithdrawal(sender, Dec("1000"), "")
		if _, err := b.Store.Append(ctx, w); !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("err=%v want ErrInsufficientFunds", err)
		}
		if n := len(mustList(t, b, sender)); n != 1 {
			t.Fatalf("sender has %d records, want 1", n)
		}
		if n := len(mustList(t, b, receiver)); n != 0 {
			t.Fatalf("receiver has %d records, want 0", n)
		}

		// 剛好等於餘額可以成功
		exact, _ := domain.NewWithdrawal(sender, Dec("900"), "")
		if _, err := b.Store.Append(ctx, exact); err != nil {
			t.Fatalf("exact withdrawal: %v", err)
		}
		assertAmount(t, "sender", assertConsistent(t, b, sender), "0")
	})

	t.Run("AppendRejectsMalformedDrafts", func(t *testing.T) {
		b := newBackend(t)
		acc := MustAccount(t, b, "a")
		bad := domain.TransactionDraft{AccountID: acc, Amount: decimal.Zero, Type: domain.TransactionTypeDeposit}
		if _, err := b.Store.Append(ctx, bad); !errors.Is(err, domain.ErrInvalidTransaction) {
			t.Fatalf("err=%v", err)
		}
		if _, err := b.Store.Append(ctx); !errors.Is(err, domain.ErrInvalidTransaction) {
			t.Fatalf("empty batch err=%v", err)
		}
		if n := len(mustList(t, b, acc)); n != 0 {
			t.Fatalf("%d records stored", n)
		}
	})

	t.Run("FractionalAmounts", func(t *testing.T) {
		b := newBackend(t)
		acc := MustAccount(t, b, "a")
		mustDeposit(t, b, acc, "0.25")
		mustDeposit(t, b, acc, "10.5")
		w, _ := domain.NewWithdrawal(acc, Dec("0.75"), "")
		if _, err := b.Store.Append(ctx, w); err != nil {
			t.Fatal(err)
		}
		assertAmount(t, "balance", assertConsistent(t, b, acc), "10")
	})

	t.Run("ExactDecimalBalances", func(t *testing.T) {
		b := newBackend(t)
		acc := MustAccount(t, b, "a")
		mustDeposit(t, b, acc, "0.3")
		w, _ := domain.NewWithdrawal(acc, Dec("0.1"), "")
		if _, err := b.Store.Append(ctx, w); err != nil {
			t.Fatal(err)
		}
		assertAmount(t, "balance", assertConsistent(t, b, acc), "0.2")

		// 剛好提領全部餘額
		all, _ := domain.NewWithdrawal(acc, Dec("0.2"), "")
		if _, err := b.Store.Append(ctx, all); err != nil {
			t.Fatalf("withdraw exact balance: %v", err)
		}
		assertAmount(t, "balance", assertConsistent(t, b, acc), "0")

		mustDeposit(t, b, acc, "1234.5678")
		assertAmount(t, "balance", assertConsistent(t, b, acc), "1234.5678")
	})

	t.Run("RejectsAmountsBeyondScale", func(t *testing.T) {
		b := newBackend(t)
		acc := MustAccount(t, b, "a")
		for _, amount := range []string{"0.00004", "1.00005"} {
			fine := domain.TransactionDraft{AccountID: acc, Amount: Dec(amount), Type: domain.TransactionTypeDeposit}
			if _, err := b.Store.Append(ctx, fine); !errors.Is(err, domain.ErrInvalidTransaction) {
				t.Fatalf("%s: err=%v", amount, err)
			}
			if _, err := NewLedger(b).Deposit(ctx, acc, Dec(amount), ""); !errors.Is(err, domain.ErrInvalidAmount) {
				t.Fatalf("%s: deposit err=%v", amount, err)
			}
		}
		if n := len(mustList(t, b, acc)); n != 0 {
			t.Fatalf("%d records stored", n)
		}
	})

	t.Run("LongDescription", func(t *testing.T) {
		b := newBackend(t)
		acc := MustAccount(t, b, "a")
		desc := strings.Repeat("帳", 300)
		d, _ := domain.NewDeposit(acc, Dec("1"), desc)
		stored, err := b.Store.Append(ctx, d)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		got, err := b.Store.FindByID(ctx, stored[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Description != desc {
			t.Fatalf("description truncated to %d runes", len([]rune(got.Description)))
		}
	})

	t.Run("FindByID", func(t *testing.T) {
		b := newBackend(t)
		acc := MustAccount(t, b, "a")
		stored := mustDeposit(t, b, acc, "42")
		got, err := b.Store.FindByID(ctx, stored.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if got.AccountID != acc || !got.Amount.Equal(Dec("42")) {
			t.Fatalf("got %+v", got)
		}
		if _, err := b.Store.FindByID(ctx, uuid.New()); !errors.Is(err, domain.ErrStatementNotFound) {
			t.Fatalf("missing err=%v", err)
		}
	})

	t.Run("EmptyAccount", func(t *testing.T) {
		b := newBackend(t)
		acc := MustAccount(t, b, "a")
		if n := len(mustList(t, b, acc)); n != 0 {
			t.Fatalf("%d records", n)
		}
		assertAmount(t, "balance", mustSum(t, b, acc), "0")
	})
}
