package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Balance 帳戶餘額快照，不落地儲存，每次查詢時由交易紀錄推導
type Balance struct {
	AccountID  string          `json:"account_id"`
	Balance    decimal.Decimal `json:"balance"`
	Statements []Transaction   `json:"statement"`
}

// TransferResult 一筆轉帳產生的兩筆紀錄
type TransferResult struct {
	Received    Transaction `json:"received_transaction"`
	Transferred Transaction `json:"transferred_transaction"`
}

// SumAmounts 加總所有交易的帶號金額
func SumAmounts(trans []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tran := range trans {
		total = total.Add(tran.Amount)
	}
	return total
}

// LockIDs 回傳需要鎖定的帳號 ID (已排序、去重)，固定順序以避免死鎖
func LockIDs(accountIDs ...string) []string {
	ids := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// DraftLockIDs 回傳一批草稿涉及的帳號 (排序後)
func DraftLockIDs(drafts []TransactionDraft) []string {
	ids := make([]string, 0, len(drafts))
	for _, d := range drafts {
		ids = append(ids, d.AccountID)
	}
	return LockIDs(ids...)
}

// Debits 彙總一批草稿中每個帳戶的出帳總額 (負數)
func Debits(drafts []TransactionDraft) map[string]decimal.Decimal {
	debits := make(map[string]decimal.Decimal)
	for _, d := range drafts {
		if !d.Amount.IsNegative() {
			continue
		}
		current, ok := debits[d.AccountID]
		if !ok {
			current = decimal.Zero
		}
		debits[d.AccountID] = current.Add(d.Amount)
	}
	return debits
}

// ValidateBatch 檢查整批草稿
func ValidateBatch(drafts []TransactionDraft) error {
	if len(drafts) == 0 {
		return ErrInvalidTransaction
	}
	for _, d := range drafts {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}
