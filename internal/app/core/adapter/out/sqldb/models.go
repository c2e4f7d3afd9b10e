// Package sqldb 以 GORM 實作帳戶目錄與交易紀錄，支援 MySQL 與 SQLite
package sqldb

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
)

// DBProvider pkg/mysql 與 pkg/sqlite 的 Client 都符合
type DBProvider interface {
	DB() *gorm.DB
}

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Name      string
	Email     string `gorm:"uniqueIndex"`
	CreatedAt time.Time
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

func (a *sqlAccount) toDomain() *domain.Account {
	return &domain.Account{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt.UTC(),
	}
}

// sqlTransaction 對應資料庫的 transactions 表
// 自增的 ID 即為 domain.Transaction.Sequence，RefID 為對外的 UUID
type sqlTransaction struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	RefID       string          `gorm:"column:ref_id;type:varchar(36);uniqueIndex"`
	AccountID   string          `gorm:"index"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4)"`
	Type        uint8
	Description string          `gorm:"type:text"`
	SenderID    string
	ReceiverID  string
	CreatedAt   time.Time
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

func fromDomain(tran domain.Transaction) sqlTransaction {
	return sqlTransaction{
		RefID:       tran.ID.String(),
		AccountID:   tran.AccountID,
		Amount:      tran.Amount,
		Type:        uint8(tran.Type),
		Description: tran.Description,
		SenderID:    tran.SenderID,
		ReceiverID:  tran.ReceiverID,
		CreatedAt:   tran.CreatedAt,
	}
}

func (t *sqlTransaction) toDomain() (domain.Transaction, error) {
	id, err := uuid.Parse(t.RefID)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		ID:          id,
		AccountID:   t.AccountID,
		Amount:      t.Amount,
		Type:        domain.TransactionType(t.Type),
		Description: t.Description,
		SenderID:    t.SenderID,
		ReceiverID:  t.ReceiverID,
		Sequence:    uint64(t.ID),
		CreatedAt:   t.CreatedAt.UTC(),
	}, nil
}
