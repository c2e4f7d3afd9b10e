// test_rpc_client 對 ledger 伺服器做併發提款壓測，確認不會透支
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	grpc_adapter "github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	grpcpool "github.com/JoeShih716/go-statement-ledger/pkg/grpc"
	"github.com/JoeShih716/go-statement-ledger/pkg/logger"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "ledger gRPC address")
	total := flag.Int("n", 1000, "number of withdrawals")
	concurrency := flag.Int("c", 100, "concurrent workers")
	opening := flag.String("opening", "1000", "opening deposit")
	amount := flag.String("amount", "7", "amount per withdrawal")
	flag.Parse()

	log := logger.New("info", "text", os.Stdout)
	if err := run(log, *addr, *total, *concurrency, decimal.RequireFromString(*opening), decimal.RequireFromString(*amount)); err != nil {
		log.Error("stress run failed", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, addr string, total, concurrency int, opening, amount decimal.Decimal) error {
	pool := grpcpool.NewPool()
	defer pool.Close()
	conn, err := pool.GetConnection(addr)
	if err != nil {
		return err
	}
	client := grpc_adapter.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	tag := uuid.NewString()[:8]
	created, err := client.CreateAccount(ctx, &grpc_adapter.CreateAccountRequest{
		Name:  "stress-" + tag,
		Email: fmt.Sprintf("stress-%s@example.com", tag),
	})
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	accountID := created.Account.ID
	if _, err := client.Deposit(ctx, &grpc_adapter.DepositRequest{AccountID: accountID, Amount: opening, Description: "opening"}); err != nil {
		return fmt.Errorf("opening deposit: %w", err)
	}
	log.Info("account ready", "account_id", accountID, "opening", opening.String())

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		rejected  atomic.Int64
		failed    atomic.Int64
	)
	sem := make(chan struct{}, concurrency)
	start := time.Now()

	for i := 0; i < total; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := client.Withdraw(ctx, &grpc_adapter.WithdrawRequest{AccountID: accountID, Amount: amount})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrInsufficientFunds):
				rejected.Add(1)
			default:
				failed.Add(1)
				log.Warn("withdraw failed", "error", err)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	balance, err := client.GetBalance(ctx, &grpc_adapter.GetBalanceRequest{AccountID: accountID})
	if err != nil {
		return fmt.Errorf("final balance: %w", err)
	}

	withdrawn := amount.Mul(decimal.NewFromInt(succeeded.Load()))
	log.Info("stress run finished",
		"elapsed", elapsed,
		"tps", float64(total)/elapsed.Seconds(),
		"succeeded", succeeded.Load(),
		"rejected", rejected.Load(),
		"failed", failed.Load(),
		"withdrawn", withdrawn.String(),
		"balance", balance.Balance.String(),
	)

	if withdrawn.GreaterThan(opening) {
		return fmt.Errorf("overdrawn: withdrew %s from opening %s", withdrawn, opening)
	}
	if !opening.Sub(withdrawn).Equal(balance.Balance) {
		return fmt.Errorf("balance %s does not match opening %s minus withdrawn %s", balance.Balance, opening, withdrawn)
	}
	return nil
}
