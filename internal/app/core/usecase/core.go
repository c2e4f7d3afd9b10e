package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
)

// LedgerService 核心業務邏輯層：存款、提款、轉帳
//
// 每個會影響餘額的操作都在帳戶鎖內完成「檢查 -> 寫入」，
// 避免兩筆並行提款各自通過檢查後一起透支。
type LedgerService struct {
	accounts AccountDirectory
	store    TransactionStore
	balances *BalanceCalculator
	locker   Locker
	logger   *slog.Logger
}

// NewLedgerService 建立 LedgerService
//
// 參數:
//
//	accounts: 帳戶目錄
//	store: 交易紀錄
//	locker: 帳戶鎖
//	logger: 結構化 logger
func NewLedgerService(accounts AccountDirectory, store TransactionStore, locker Locker, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		accounts: accounts,
		store:    store,
		balances: NewBalanceCalculator(accounts, store),
		locker:   locker,
		logger:   logger,
	}
}

// Deposit 存款，寫入一筆 +amount 的紀錄
func (s *LedgerService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	draft, err := domain.NewDeposit(accountID, amount, description)
	if err != nil {
		return nil, err
	}
	if err := s.mustExist(ctx, accountID); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	stored, err := s.store.Append(ctx, draft)
	if err != nil {
		s.logger.Error("deposit failed", "account_id", accountID, "error", err)
		return nil, err
	}
	s.logger.Info("deposit posted",
		"account_id", accountID,
		"amount", amount.String(),
		"transaction_id", stored[0].ID,
	)
	return &stored[0], nil
}

// Withdraw 提款，餘額不足時回傳 domain.ErrInsufficientFunds
// 提款金額剛好等於餘額時成功，餘額歸零
func (s *LedgerService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	draft, err := domain.NewWithdrawal(accountID, amount, description)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	balance, err := s.balances.Current(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		s.logger.Warn("withdraw rejected - insufficient funds",
			"account_id", accountID,
			"amount", amount.String(),
			"balance", balance.String(),
		)
		return nil, domain.ErrInsufficientFunds
	}

	stored, err := s.store.Append(ctx, draft)
	if err != nil {
		s.logger.Error("withdraw failed", "account_id", accountID, "error", err)
		return nil, err
	}
	s.logger.Info("withdraw posted",
		"account_id", accountID,
		"amount", amount.String(),
		"transaction_id", stored[0].ID,
	)
	return &stored[0], nil
}

// Transfer 由 ownerID 轉帳給 userID
//
// 參數:
//
//	ownerID: 付款方 (已通過身分驗證的帳戶)
//	userID: 收款方
//
// 回傳:
//
//	*domain.TransferResult: 收款方 +amount 與付款方 -amount 兩筆紀錄
//	error: domain.ErrAccountNotFound / domain.ErrInsufficientFunds / 儲存錯誤
func (s *LedgerService) Transfer(ctx context.Context, ownerID, userID string, amount decimal.Decimal, description string) (*domain.TransferResult, error) {
	pair, err := domain.NewTransferPair(ownerID, userID, amount, description)
	if err != nil {
		return nil, err
	}
	// 先確認收款方，再確認付款方
	if err := s.mustExist(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.mustExist(ctx, ownerID); err != nil {
		return nil, err
	}

	s.logger.Info("transfer started",
		"from", ownerID,
		"to", userID,
		"amount", amount.String(),
	)

	// 兩個帳戶都要鎖，順序由 Locker 固定
	unlock, err := s.locker.Lock(ctx, ownerID, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	balance, err := s.balances.Current(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		s.logger.Warn("transfer failed - insufficient funds",
			"from", ownerID,
			"amount", amount.String(),
			"balance", balance.String(),
		)
		return nil, domain.ErrInsufficientFunds
	}

	stored, err := s.store.Append(ctx, pair.Drafts()...)
	if err != nil {
		s.logger.Error("transfer failed", "from", ownerID, "to", userID, "error", err)
		return nil, err
	}
	result := &domain.TransferResult{
		Received:    stored[0],
		Transferred: stored[1],
	}
	s.logger.Info("transfer successful",
		"from", ownerID,
		"to", userID,
		"received_id", result.Received.ID,
		"transferred_id", result.Transferred.ID,
	)
	return result, nil
}

// GetBalance 取得餘額與完整紀錄
func (s *LedgerService) GetBalance(ctx context.Context, accountID string) (*domain.Balance, error) {
	return s.balances.GetBalance(ctx, accountID)
}

// GetStatement 取得帳戶底下的單筆紀錄
// 紀錄屬於其他帳戶時視同不存在
func (s *LedgerService) GetStatement(ctx context.Context, accountID string, statementID uuid.UUID) (*domain.Transaction, error) {
	if err := s.mustExist(ctx, accountID); err != nil {
		return nil, err
	}
	tran, err := s.store.FindByID(ctx, statementID)
	if err != nil {
		return nil, err
	}
	if tran.AccountID != accountID {
		return nil, domain.ErrStatementNotFound
	}
	return tran, nil
}

func (s *LedgerService) mustExist(ctx context.Context, accountID string) error {
	ok, err := s.accounts.Exists(ctx, accountID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAccountNotFound
	}
	return nil
}
