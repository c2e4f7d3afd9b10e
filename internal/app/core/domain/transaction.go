package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountScale 金額最多允許的小數位數 (對應 DECIMAL(20,4))
const AmountScale int32 = 4

// validAmount 正數且小數位數不超過 AmountScale
// 1.50000 這類尾數為 0 的寫法視為合法
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(AmountScale))
}

// TransactionType 交易類型
// 為了節省記憶體，使用 uint8；對外 (JSON / DB) 一律以字串表示
type TransactionType uint8

const (
	// 存款
	TransactionTypeDeposit TransactionType = 1
	// 提款
	TransactionTypeWithdraw TransactionType = 2
	// 轉帳 (一筆轉帳固定拆成兩筆紀錄)
	TransactionTypeTransfer TransactionType = 3
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeDeposit:
		return "deposit"
	case TransactionTypeWithdraw:
		return "withdraw"
	case TransactionTypeTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParseTransactionType 將字串轉回 TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	switch s {
	case "deposit":
		return TransactionTypeDeposit, nil
	case "withdraw":
		return TransactionTypeWithdraw, nil
	case "transfer":
		return TransactionTypeTransfer, nil
	default:
		return 0, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, s)
	}
}

func (t TransactionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TransactionType) UnmarshalText(text []byte) error {
	parsed, err := ParseTransactionType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Transaction 已寫入帳本的單筆紀錄 (Statement)，寫入後不可變更
//
// Amount 一律帶號：正數為入帳，負數為出帳。
// 提款的請求金額為正數，寫入時取負值。
type Transaction struct {
	// ID: 建立時分配，永不重複使用
	ID uuid.UUID `json:"id"`
	// AccountID: 此筆紀錄所屬的帳戶
	AccountID string `json:"account_id"`
	// Amount: 帶號金額
	Amount decimal.Decimal `json:"amount"`
	Type   TransactionType `json:"type"`
	// Description: 自由文字描述
	Description string `json:"description"`
	// SenderID: 轉入紀錄的來源帳戶 (僅轉帳入帳方)
	SenderID string `json:"sender_id,omitempty"`
	// ReceiverID: 轉出紀錄的目標帳戶 (僅轉帳出帳方)
	ReceiverID string `json:"receiver_id,omitempty"`
	// Sequence: 由 Store 分配的建立順序 (1, 2, 3...)
	Sequence  uint64    `json:"sequence"`
	CreatedAt time.Time `json:"created_at"`
}

// TransactionDraft 尚未寫入的交易，由 Store 分配 ID / Sequence / CreatedAt
type TransactionDraft struct {
	AccountID   string
	Amount      decimal.Decimal
	Type        TransactionType
	Description string
	SenderID    string
	ReceiverID  string
}

// NewDeposit 建立存款草稿，amount 必須為正數
func NewDeposit(accountID string, amount decimal.Decimal, description string) (TransactionDraft, error) {
	if !validAmount(amount) {
		return TransactionDraft{}, ErrInvalidAmount
	}
	return TransactionDraft{
		AccountID:   accountID,
		Amount:      amount,
		Type:        TransactionTypeDeposit,
		Description: description,
	}, nil
}

// NewWithdrawal 建立提款草稿，請求金額為正數，寫入金額為負數
func NewWithdrawal(accountID string, amount decimal.Decimal, description string) (TransactionDraft, error) {
	if !validAmount(amount) {
		return TransactionDraft{}, ErrInvalidAmount
	}
	return TransactionDraft{
		AccountID:   accountID,
		Amount:      amount.Neg(),
		Type:        TransactionTypeWithdraw,
		Description: description,
	}, nil
}

// TransferPair 一筆轉帳對應的兩筆草稿
type TransferPair struct {
	// Received: 收款方 +amount，帶 SenderID
	Received TransactionDraft
	// Transferred: 付款方 -amount，帶 ReceiverID
	Transferred TransactionDraft
}

// NewTransferPair 建立轉帳的兩筆草稿
func NewTransferPair(senderID, receiverID string, amount decimal.Decimal, description string) (TransferPair, error) {
	if !validAmount(amount) {
		return TransferPair{}, ErrInvalidAmount
	}
	if senderID == receiverID {
		return TransferPair{}, ErrSameAccount
	}
	return TransferPair{
		Received: TransactionDraft{
			AccountID:   receiverID,
			Amount:      amount,
			Type:        TransactionTypeTransfer,
			Description: description,
			SenderID:    senderID,
		},
		Transferred: TransactionDraft{
			AccountID:   senderID,
			Amount:      amount.Neg(),
			Type:        TransactionTypeTransfer,
			Description: description,
			ReceiverID:  receiverID,
		},
	}, nil
}

// Drafts 依寫入順序回傳 (先入帳方，再出帳方)
func (p TransferPair) Drafts() []TransactionDraft {
	return []TransactionDraft{p.Received, p.Transferred}
}

// Validate 檢查草稿結構是否符合帳本的符號規則
func (d TransactionDraft) Validate() error {
	if d.AccountID == "" {
		return fmt.Errorf("%w: missing account id", ErrInvalidTransaction)
	}
	if d.Amount.IsZero() {
		return fmt.Errorf("%w: zero amount", ErrInvalidTransaction)
	}
	if !validAmount(d.Amount.Abs()) {
		return fmt.Errorf("%w: more than %d decimal places", ErrInvalidTransaction, AmountScale)
	}
	switch d.Type {
	case TransactionTypeDeposit:
		if d.Amount.IsNegative() || d.SenderID != "" || d.ReceiverID != "" {
			return fmt.Errorf("%w: malformed deposit", ErrInvalidTransaction)
		}
	case TransactionTypeWithdraw:
		if d.Amount.IsPositive() || d.SenderID != "" || d.ReceiverID != "" {
			return fmt.Errorf("%w: malformed withdrawal", ErrInvalidTransaction)
		}
	case TransactionTypeTransfer:
		// 恰好一個對手方，且符號要與方向一致
		switch {
		case d.SenderID != "" && d.ReceiverID == "":
			if d.Amount.IsNegative() {
				return fmt.Errorf("%w: received transfer must be positive", ErrInvalidTransaction)
			}
		case d.ReceiverID != "" && d.SenderID == "":
			if d.Amount.IsPositive() {
				return fmt.Errorf("%w: sent transfer must be negative", ErrInvalidTransaction)
			}
		default:
			return fmt.Errorf("%w: transfer needs exactly one counterparty", ErrInvalidTransaction)
		}
	default:
		return fmt.Errorf("%w: unknown type %d", ErrInvalidTransaction, uint8(d.Type))
	}
	return nil
}

// Materialize 由 Store 呼叫，補上 ID / Sequence / CreatedAt 成為正式紀錄
func (d TransactionDraft) Materialize(seq uint64, now time.Time) Transaction {
	return Transaction{
		ID:          uuid.New(),
		AccountID:   d.AccountID,
		Amount:      d.Amount,
		Type:        d.Type,
		Description: d.Description,
		SenderID:    d.SenderID,
		ReceiverID:  d.ReceiverID,
		Sequence:    seq,
		CreatedAt:   now,
	}
}
