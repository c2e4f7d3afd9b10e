package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
)

// BalanceCalculator 由交易紀錄推導帳戶餘額，不做任何快取
type BalanceCalculator struct {
	accounts AccountDirectory
	store    TransactionStore
}

func NewBalanceCalculator(accounts AccountDirectory, store TransactionStore) *BalanceCalculator {
	return &BalanceCalculator{
		accounts: accounts,
		store:    store,
	}
}

// GetBalance 回傳餘額與完整紀錄
// 餘額由同一份紀錄加總，兩者一定一致
func (c *BalanceCalculator) GetBalance(ctx context.Context, accountID string) (*domain.Balance, error) {
	if err := c.mustExist(ctx, accountID); err != nil {
		return nil, err
	}
	statements, err := c.store.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &domain.Balance{
		AccountID:  accountID,
		Balance:    domain.SumAmounts(statements),
		Statements: statements,
	}, nil
}

// Current 只取餘額 (走 Store 的聚合查詢)
func (c *BalanceCalculator) Current(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if err := c.mustExist(ctx, accountID); err != nil {
		return decimal.Zero, err
	}
	return c.store.SumByAccount(ctx, accountID)
}

func (c *BalanceCalculator) mustExist(ctx context.Context, accountID string) error {
	ok, err := c.accounts.Exists(ctx, accountID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAccountNotFound
	}
	return nil
}
