package grpc

import (
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
)

// Account 帳戶
type Account struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Email     string                 `json:"email"`
	CreatedAt *timestamppb.Timestamp `json:"created_at"`
}

// Transaction 單筆紀錄，Amount 帶號
type Transaction struct {
	ID          string                 `json:"id"`
	AccountID   string                 `json:"account_id"`
	Amount      decimal.Decimal        `json:"amount"`
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	SenderID    string                 `json:"sender_id,omitempty"`
	ReceiverID  string                 `json:"receiver_id,omitempty"`
	Sequence    uint64                 `json:"sequence"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at"`
}

type CreateAccountRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CreateAccountResponse struct {
	Account *Account `json:"account"`
}

type GetAccountRequest struct {
	AccountID string `json:"account_id"`
}

type GetAccountResponse struct {
	Account *Account `json:"account"`
}

// DepositRequest Amount 為正數
type DepositRequest struct {
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type DepositResponse struct {
	Transaction *Transaction `json:"transaction"`
}

// WithdrawRequest Amount 為正數，回傳的紀錄為負數
type WithdrawRequest struct {
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type WithdrawResponse struct {
	Transaction *Transaction `json:"transaction"`
}

// TransferRequest OwnerID 為付款方，由呼叫端 (已驗證身分的 gateway) 提供
type TransferRequest struct {
	OwnerID     string          `json:"owner_id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type TransferResponse struct {
	Received    *Transaction `json:"received_transaction"`
	Transferred *Transaction `json:"transferred_transaction"`
}

type GetBalanceRequest struct {
	AccountID string `json:"account_id"`
}

type GetBalanceResponse struct {
	AccountID  string          `json:"account_id"`
	Balance    decimal.Decimal `json:"balance"`
	Statements []*Transaction  `json:"statement"`
}

type GetStatementRequest struct {
	AccountID   string `json:"account_id"`
	StatementID string `json:"statement_id"`
}

type GetStatementResponse struct {
	Transaction *Transaction `json:"transaction"`
}

func toAccount(a *domain.Account) *Account {
	return &Account{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: timestamppb.New(a.CreatedAt),
	}
}

func toTransaction(t *domain.Transaction) *Transaction {
	return &Transaction{
		ID:          t.ID.String(),
		AccountID:   t.AccountID,
		Amount:      t.Amount,
		Type:        t.Type.String(),
		Description: t.Description,
		SenderID:    t.SenderID,
		ReceiverID:  t.ReceiverID,
		Sequence:    t.Sequence,
		CreatedAt:   timestamppb.New(t.CreatedAt),
	}
}
