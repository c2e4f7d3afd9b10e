package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-statement-ledger/pkg/wal"
)

// Directory 記憶體帳戶目錄
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	emails   map[string]string
	wal      *wal.WAL
}

// NewDirectory 建立帳戶目錄，若有 WAL 會先載入既有帳戶
func NewDirectory(w *wal.WAL) (*Directory, error) {
	dir := &Directory{
		accounts: make(map[string]*domain.Account),
		emails:   make(map[string]string),
		wal:      w,
	}
	if w == nil {
		return dir, nil
	}
	err := w.ReadAll(func(jsonRaw []byte) error {
		var account domain.Account
		if err := json.Unmarshal(jsonRaw, &account); err != nil {
			return err
		}
		dir.put(&account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dir, nil
}

func (d *Directory) Exists(ctx context.Context, accountID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.accounts[accountID]
	return ok, nil
}

func (d *Directory) Resolve(ctx context.Context, accountID string) (*domain.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	account, ok := d.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (d *Directory) Create(ctx context.Context, account *domain.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.emails[account.Email]; ok {
		return domain.ErrAccountAlreadyExists
	}
	if _, ok := d.accounts[account.ID]; ok {
		return domain.ErrAccountAlreadyExists
	}
	if d.wal != nil {
		if err := d.wal.Write(account); err != nil {
			return domain.NewStorageError("wal write", err)
		}
	}
	cp := *account
	d.put(&cp)
	return nil
}

// List 依建立時間排序回傳所有帳戶
func (d *Directory) List(ctx context.Context) ([]*domain.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*domain.Account, 0, len(d.accounts))
	for _, account := range d.accounts {
		cp := *account
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (d *Directory) put(account *domain.Account) {
	d.accounts[account.ID] = account
	d.emails[account.Email] = account.ID
}

var _ usecase.AccountDirectory = (*Directory)(nil)
