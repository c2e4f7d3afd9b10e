package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-statement-ledger/pkg/wal"
)

// walBatch WAL 中的一行，對應一次 Append (轉帳的兩筆在同一行)
type walBatch struct {
	Transactions []domain.Transaction `json:"transactions"`
}

// TransactionStore 使用 Mutex 保護的記憶體交易紀錄
//
// 結構:
//
//	mu: 保護以下所有欄位
//	seq: 最後分配的 Sequence
//	byID: 交易 ID 對應紀錄
//	byAccount: 帳戶 ID 對應紀錄 (依建立順序)
//	sums: 帳戶 ID 對應目前餘額
//	wal: Write-Ahead Log 實例 (可為 nil)
type TransactionStore struct {
	mu        sync.RWMutex
	seq       uint64
	byID      map[uuid.UUID]domain.Transaction
	byAccount map[string][]domain.Transaction
	sums      map[string]decimal.Decimal
	wal       *wal.WAL
	now       func() time.Time
}

// NewTransactionStore 建立記憶體交易紀錄，若有 WAL 會先重放
//
// 參數:
//
//	w: Write-Ahead Log 實例，nil 表示不落地
//
// 回傳:
//
//	*TransactionStore: 實例
//	error: 初始化錯誤 (如 WAL 恢復失敗)
func NewTransactionStore(w *wal.WAL) (*TransactionStore, error) {
	store := &TransactionStore{
		byID:      make(map[uuid.UUID]domain.Transaction),
		byAccount: make(map[string][]domain.Transaction),
		sums:      make(map[string]decimal.Decimal),
		wal:       w,
		now:       time.Now,
	}
	if w == nil {
		return store, nil
	}
	if err := store.recoverFromWAL(); err != nil {
		return nil, err
	}
	return store, nil
}

// recoverFromWAL 從 WAL 檔案恢復交易紀錄
// 只有 NewTransactionStore 呼叫，無需 Lock (單執行緒)
func (s *TransactionStore) recoverFromWAL() error {
	return s.wal.ReadAll(func(jsonRaw []byte) error {
		var batch walBatch
		if err := json.Unmarshal(jsonRaw, &batch); err != nil {
			return err
		}
		for _, tran := range batch.Transactions {
			s.apply(tran)
		}
		return nil
	})
}

// Append 原子寫入一批草稿
//
// 1. 檢查草稿結構
// 2. 重新計算出帳帳戶的餘額，不足則整批拒絕
// 3. 寫入 WAL (Critical Path)
// 4. 更新記憶體
func (s *TransactionStore) Append(ctx context.Context, drafts ...domain.TransactionDraft) ([]domain.Transaction, error) {
	if err := domain.ValidateBatch(drafts); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for accountID, debit := range domain.Debits(drafts) {
		if s.balanceLocked(accountID).Add(debit).IsNegative() {
			return nil, domain.ErrInsufficientFunds
		}
	}

	now := s.now().UTC()
	batch := make([]domain.Transaction, 0, len(drafts))
	for i, d := range drafts {
		batch = append(batch, d.Materialize(s.seq+uint64(i)+1, now))
	}

	if s.wal != nil {
		if err := s.wal.Write(walBatch{Transactions: batch}); err != nil {
			return nil, domain.NewStorageError("wal write", err)
		}
	}

	for _, tran := range batch {
		s.apply(tran)
	}
	return batch, nil
}

// apply 將一筆紀錄寫入記憶體，呼叫端需持有寫鎖 (或在初始化階段)
func (s *TransactionStore) apply(tran domain.Transaction) {
	s.byID[tran.ID] = tran
	s.byAccount[tran.AccountID] = append(s.byAccount[tran.AccountID], tran)
	s.sums[tran.AccountID] = s.balanceLocked(tran.AccountID).Add(tran.Amount)
	if tran.Sequence > s.seq {
		s.seq = tran.Sequence
	}
}

func (s *TransactionStore) balanceLocked(accountID string) decimal.Decimal {
	sum, ok := s.sums[accountID]
	if !ok {
		return decimal.Zero
	}
	return sum
}

// ListByAccount 依建立順序回傳帳戶紀錄 (複本)
func (s *TransactionStore) ListByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trans := s.byAccount[accountID]
	out := make([]domain.Transaction, len(trans))
	copy(out, trans)
	return out, nil
}

// SumByAccount 帳戶餘額 (寫入時累加的結果)
func (s *TransactionStore) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balanceLocked(accountID), nil
}

// FindByID 取得單筆紀錄
func (s *TransactionStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tran, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrStatementNotFound
	}
	return &tran, nil
}

var _ usecase.TransactionStore = (*TransactionStore)(nil)
