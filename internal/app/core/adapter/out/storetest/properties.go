package storetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
)

// RunLedgerProperties 透過 LedgerService 驗證帳本在指定實作上的行為
func RunLedgerProperties(t *testing.T, newBackend Factory) {
	ctx := context.Background()

	t.Run("WithdrawDepositWalkthrough", func(t *testing.T) {
		b := newBackend(t)
		ledger := NewLedger(b)
		acc := MustAccount(t, b, "a")
		if _, err := ledger.Deposit(ctx, acc, Dec("900"), "Initial transaction"); err != nil {
			t.Fatal(err)
		}

		if _, err := ledger.Withdraw(ctx, acc, Dec("1000"), ""); !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("withdraw 1000 err=%v", err)
		}
		assertAmount(t, "after rejected withdraw", assertConsistent(t, b, acc), "900")

		tran, err := ledger.Withdraw(ctx, acc, Dec("800"), "")
		if err != nil {
			t.Fatalf("withdraw 800: %v", err)
		}
		if tran.Type != domain.TransactionTypeWithdraw || !tran.Amount.Equal(Dec("-800")) {
			t.Fatalf("withdraw record %+v", tran)
		}
		assertAmount(t, "after withdraw", assertConsistent(t, b, acc), "100")

		if _, err := ledger.Deposit(ctx, acc, Dec("1800"), ""); err != nil {
			t.Fatal(err)
		}
		balance, err := ledger.GetBalance(ctx, acc)
		if err != nil {
			t.Fatal(err)
		}
		assertAmount(t, "final", balance.Balance, "1900")
		if len(balance.Statements) != 3 {
			t.Fatalf("statements=%d want 3", len(balance.Statements))
		}
	})

	t.Run("TransferWalkthrough", func(t *testing.T) {
		b := newBackend(t)
		ledger := NewLedger(b)
		sender := MustAccount(t, b, "sender")
		receiver := MustAccount(t, b, "receiver")
		if _, err := ledger.Deposit(ctx, sender, Dec("900"), ""); err != nil {
			t.Fatal(err)
		}

		result, err := ledger.Transfer(ctx, sender, receiver, Dec("800"), "rent")
		if err != nil {
			t.Fatalf("Transfer: %v", err)
		}
		if !result.Transferred.Amount.Equal(Dec("-800")) || result.Transferred.ReceiverID != receiver {
			t.Fatalf("transferred %+v", result.Transferred)
		}
		if !result.Received.Amount.Equal(Dec("800")) || result.Received.SenderID != sender {
			t.Fatalf("received %+v", result.Received)
		}
		if result.Received.Description != "rent" || result.Transferred.Description != "rent" {
			t.Fatal("pair descriptions differ")
		}
		assertAmount(t, "sender", assertConsistent(t, b, sender), "100")
		assertAmount(t, "receiver", assertConsistent(t, b, receiver), "800")
	})

	t.Run("DepositDoesNotTouchOtherAccounts", func(t *testing.T) {
		b := newBackend(t)
		ledger := NewLedger(b)
		a := MustAccount(t, b, "a")
		other := MustAccount(t, b, "other")
		if _, err := ledger.Deposit(ctx, other, Dec("5"), ""); err != nil {
			t.Fatal(err)
		}
		if _, err := ledger.Deposit(ctx, a, Dec("12.34"), ""); err != nil {
			t.Fatal(err)
		}
		assertAmount(t, "a", assertConsistent(t, b, a), "12.34")
		assertAmount(t, "other", assertConsistent(t, b, other), "5")
	})

	t.Run("FailedTransferLeavesNoTrace", func(t *testing.T) {
		b := newBackend(t)
		ledger := NewLedger(b)
		sender := MustAccount(t, b, "sender")
		receiver := MustAccount(t, b, "receiver")
		if _, err := ledger.Deposit(ctx, sender, Dec("100"), ""); err != nil {
			t.Fatal(err)
		}
		if _, err := ledger.Transfer(ctx, sender, receiver, Dec("100.5"), ""); !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("err=%v", err)
		}
		if n := len(mustList(t, b, sender)); n != 1 {
			t.Fatalf("sender records=%d", n)
		}
		if n := len(mustList(t, b, receiver)); n != 0 {
			t.Fatalf("receiver records=%d", n)
		}
	})

	t.Run("UnknownAccountsProduceNothing", func(t *testing.T) {
		b := newBackend(t)
		ledger := NewLedger(b)
		known := MustAccount(t, b, "known")
		if _, err := ledger.Deposit(ctx, known, Dec("50"), ""); err != nil {
			t.Fatal(err)
		}
		ghost := uuid.NewString()

		if _, err := ledger.Deposit(ctx, ghost, Dec("1"), ""); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("deposit err=%v", err)
		}
		if _, err := ledger.Withdraw(ctx, ghost, Dec("1"), ""); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("withdraw err=%v", err)
		}
		if _, err := ledger.Transfer(ctx, known, ghost, Dec("1"), ""); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("transfer to ghost err=%v", err)
		}
		if _, err := ledger.Transfer(ctx, ghost, known, Dec("1"), ""); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("transfer from ghost err=%v", err)
		}
		if _, err := ledger.GetBalance(ctx, ghost); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("balance err=%v", err)
		}

		if n := len(mustList(t, b, ghost)); n != 0 {
			t.Fatalf("ghost has %d records", n)
		}
		if n := len(mustList(t, b, known)); n != 1 {
			t.Fatalf("known has %d records", n)
		}
	})

	t.Run("InvalidRequests", func(t *testing.T) {
		b := newBackend(t)
		ledger := NewLedger(b)
		acc := MustAccount(t, b, "a")
		if _, err := ledger.Deposit(ctx, acc, Dec("0"), ""); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("zero deposit err=%v", err)
		}
		if _, err := ledger.Withdraw(ctx, acc, Dec("-3"), ""); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("negative withdraw err=%v", err)
		}
		if _, err := ledger.Transfer(ctx, acc, acc, Dec("1"), ""); !errors.Is(err, domain.ErrSameAccount) {
			t.Fatalf("self transfer err=%v", err)
		}
		if n := len(mustList(t, b, acc)); n != 0 {
			t.Fatalf("%d records", n)
		}
	})

	t.Run("GetStatementScopedToOwner", func(t *testing.T) {
		b := newBackend(t)
		ledger := NewLedger(b)
		a := MustAccount(t, b, "a")
		other := MustAccount(t, b, "other")
		tran, err := ledger.Deposit(ctx, a, Dec("7"), "")
		if err != nil {
			t.Fatal(err)
		}
		got, err := ledger.GetStatement(ctx, a, tran.ID)
		if err != nil || got.ID != tran.ID {
			t.Fatalf("GetStatement got=%v err=%v", got, err)
		}
		if _, err := ledger.GetStatement(ctx, other, tran.ID); !errors.Is(err, domain.ErrStatementNotFound) {
			t.Fatalf("foreign statement err=%v", err)
		}
	})

	t.Run("ConcurrentWithdrawalsNeverOverdraw", func(t *testing.T) {
		b := newBackend(t)
		ledger := NewLedger(b)
		acc := MustAccount(t, b, "a")
		if _, err := ledger.Deposit(ctx, acc, Dec("1000"), ""); err != nil {
			t.Fatal(err)
		}

		const workers = 40
		var (
			wg        sync.WaitGroup
			succeeded atomic.Int64
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ledger.Withdraw(ctx, acc, Dec("60"), "")
				switch {
				case err == nil:
					succeeded.Add(1)
				case errors.Is(err, domain.ErrInsufficientFunds):
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		// 1000 / 60 = 16 筆成功，剩 40
		if got := succeeded.Load(); got != 16 {
			t.Fatalf("succeeded=%d want 16", got)
		}
		assertAmount(t, "balance", assertConsistent(t, b, acc), "40")
	})

	t.Run("OppositeTransfersConserveTotal", func(t *testing.T) {
		b := newBackend(t)
		ledger := NewLedger(b)
		x := MustAccount(t, b, "x")
		y := MustAccount(t, b, "y")
		for _, id := range []string{x, y} {
			if _, err := ledger.Deposit(ctx, id, Dec("100"), ""); err != nil {
				t.Fatal(err)
			}
		}

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, _ = ledger.Transfer(ctx, x, y, Dec("15"), "")
			}()
			go func() {
				defer wg.Done()
				_, _ = ledger.Transfer(ctx, y, x, Dec("10"), "")
			}()
		}
		wg.Wait()

		bx := assertConsistent(t, b, x)
		by := assertConsistent(t, b, y)
		if bx.IsNegative() || by.IsNegative() {
			t.Fatalf("negative balance x=%s y=%s", bx, by)
		}
		assertAmount(t, "total", bx.Add(by), "200")
	})
}
