package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
)

// AccountService 帳戶註冊與查詢 (不含密碼與登入)
type AccountService struct {
	accounts AccountDirectory
	logger   *slog.Logger
	now      func() time.Time
}

func NewAccountService(accounts AccountDirectory, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		accounts: accounts,
		logger:   logger,
		now:      time.Now,
	}
}

// Register 建立新帳戶
func (s *AccountService) Register(ctx context.Context, name, email string) (*domain.Account, error) {
	account, err := domain.NewAccount(name, email, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("account registered", "account_id", account.ID)
	return account, nil
}

// Profile 取得帳戶資料
func (s *AccountService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accounts.Resolve(ctx, accountID)
}
