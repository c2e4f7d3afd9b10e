package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
)

// AccountDirectory 帳戶目錄，帳本只用來確認帳戶是否存在
type AccountDirectory interface {
	// Exists 帳戶是否存在
	Exists(ctx context.Context, accountID string) (bool, error)
	// Resolve 取得帳戶，不存在時回傳 domain.ErrAccountNotFound
	Resolve(ctx context.Context, accountID string) (*domain.Account, error)
	// Create 新增帳戶，Email 重複時回傳 domain.ErrAccountAlreadyExists
	Create(ctx context.Context, account *domain.Account) error
	// List 載入所有帳戶
	List(ctx context.Context) ([]*domain.Account, error)
}

// TransactionStore 只能追加的交易紀錄
type TransactionStore interface {
	// Append 原子寫入一批草稿 (全部成功或全部不寫)
	// 若任一出帳草稿會讓帳戶餘額變成負數，回傳 domain.ErrInsufficientFunds
	Append(ctx context.Context, drafts ...domain.TransactionDraft) ([]domain.Transaction, error)
	// ListByAccount 依建立順序回傳帳戶的所有紀錄
	ListByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error)
	// SumByAccount 帳戶所有紀錄的帶號總和
	SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
	// FindByID 以 ID 取得單筆紀錄，不存在時回傳 domain.ErrStatementNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
}

// Locker 帳戶層級的互斥鎖
// 多個 key 需依固定順序加鎖，回傳的 unlock 以相反順序釋放
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}
