package sqldb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/usecase"
)

// Store 資料庫交易紀錄
type Store struct {
	client DBProvider
	now    func() time.Time
}

func NewStore(client DBProvider) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

// Append 在一個資料庫 Transaction 內寫入整批草稿
//
// 1. 依排序後的帳戶 ID 對 accounts 加悲觀鎖 (SELECT ... FOR UPDATE)
// 2. 在鎖內重新加總出帳帳戶餘額，不足則 Rollback
// 3. 逐筆寫入，自增 ID 作為 Sequence
//
// 多個服務實例共用同一個資料庫時，第 1 步才是真正的互斥點
// SQLite 沒有 FOR UPDATE，GORM 會略過，由單一連線序列化
func (s *Store) Append(ctx context.Context, drafts ...domain.TransactionDraft) ([]domain.Transaction, error) {
	if err := domain.ValidateBatch(drafts); err != nil {
		return nil, err
	}

	var stored []domain.Transaction
	err := s.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []sqlAccount
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", domain.DraftLockIDs(drafts)).
			Order("id").
			Find(&locked).Error; err != nil {
			return err
		}

		for accountID, debit := range domain.Debits(drafts) {
			balance, err := sumByAccount(tx, accountID)
			if err != nil {
				return err
			}
			if balance.Add(debit).IsNegative() {
				return domain.ErrInsufficientFunds
			}
		}

		// MySQL DATETIME(6) 只到微秒
		now := s.now().UTC().Truncate(time.Microsecond)
		stored = make([]domain.Transaction, 0, len(drafts))
		for _, d := range drafts {
			tran := d.Materialize(0, now)
			row := fromDomain(tran)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			tran.Sequence = uint64(row.ID)
			stored = append(stored, tran)
		}
		return nil
	})
	if err != nil {
		if domain.KindOf(err) != domain.KindInternal {
			return nil, err
		}
		return nil, domain.NewStorageError("append", err)
	}
	return stored, nil
}

// ListByAccount 依寫入順序 (自增 ID) 回傳帳戶紀錄
func (s *Store) ListByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	var rows []sqlTransaction
	err := s.client.DB().WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, domain.NewStorageError("list transactions", err)
	}
	out := make([]domain.Transaction, 0, len(rows))
	for i := range rows {
		tran, err := rows[i].toDomain()
		if err != nil {
			return nil, domain.NewStorageError("list transactions", err)
		}
		out = append(out, tran)
	}
	return out, nil
}

// SumByAccount 帳戶餘額
func (s *Store) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	sum, err := sumByAccount(s.client.DB().WithContext(ctx), accountID)
	if err != nil {
		return decimal.Zero, domain.NewStorageError("sum transactions", err)
	}
	return sum, nil
}

// sumByAccount 取出金額後以 decimal 加總
// 不使用 SQL SUM：SQLite 會以浮點數運算，結果與逐筆加總不一致
func sumByAccount(db *gorm.DB, accountID string) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := db.Model(&sqlTransaction{}).
		Where("account_id = ?", accountID).
		Order("id").
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, amount := range amounts {
		sum = sum.Add(amount)
	}
	return sum, nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var row sqlTransaction
	err := s.client.DB().WithContext(ctx).Where("ref_id = ?", id.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStatementNotFound
	}
	if err != nil {
		return nil, domain.NewStorageError("find transaction", err)
	}
	tran, err := row.toDomain()
	if err != nil {
		return nil, domain.NewStorageError("find transaction", err)
	}
	return &tran, nil
}

var _ usecase.TransactionStore = (*Store)(nil)
