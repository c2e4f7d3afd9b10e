package sqldb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/usecase"
)

// Directory 資料庫帳戶目錄
type Directory struct {
	client DBProvider
}

func NewDirectory(client DBProvider) *Directory {
	return &Directory{
		client: client,
	}
}

func (d *Directory) Exists(ctx context.Context, accountID string) (bool, error) {
	var n int64
	err := d.client.DB().WithContext(ctx).
		Model(&sqlAccount{}).
		Where("id = ?", accountID).
		Count(&n).Error
	if err != nil {
		return false, domain.NewStorageError("account exists", err)
	}
	return n > 0, nil
}

func (d *Directory) Resolve(ctx context.Context, accountID string) (*domain.Account, error) {
	var row sqlAccount
	err := d.client.DB().WithContext(ctx).Where("id = ?", accountID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, domain.NewStorageError("account resolve", err)
	}
	return row.toDomain(), nil
}

// Create 新增帳戶
// 先查 Email 是否已被使用，並行註冊時則由唯一索引擋下
func (d *Directory) Create(ctx context.Context, account *domain.Account) error {
	db := d.client.DB().WithContext(ctx)
	var n int64
	if err := db.Model(&sqlAccount{}).Where("email = ?", account.Email).Count(&n).Error; err != nil {
		return domain.NewStorageError("account create", err)
	}
	if n > 0 {
		return domain.ErrAccountAlreadyExists
	}

	row := sqlAccount{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}
	err := db.Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAccountAlreadyExists
	}
	if err != nil {
		return domain.NewStorageError("account create", err)
	}
	return nil
}

func (d *Directory) List(ctx context.Context) ([]*domain.Account, error) {
	var rows []sqlAccount
	if err := d.client.DB().WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, domain.NewStorageError("account list", err)
	}
	out := make([]*domain.Account, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

var _ usecase.AccountDirectory = (*Directory)(nil)
