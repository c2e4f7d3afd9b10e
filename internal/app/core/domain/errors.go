package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount 金額必須為正數
	ErrInvalidAmount = errors.New("amount must be positive with at most 4 decimal places")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists 帳戶已存在 (Email 重複)
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrInvalidAccount 帳戶資料不完整
	ErrInvalidAccount = errors.New("account name and email are required")

	// ErrSameAccount 不可轉帳給自己
	ErrSameAccount = errors.New("cannot transfer to the same account")

	// ErrStatementNotFound 找不到交易紀錄
	ErrStatementNotFound = errors.New("statement not found")

	// ErrInvalidTransaction 交易草稿結構錯誤
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrStorageFailure 儲存層無法完成寫入或查詢
	ErrStorageFailure = errors.New("storage failure")
)

// StorageError 包裝儲存層的底層錯誤，errors.Is(err, ErrStorageFailure) 成立
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

// NewStorageError 建立 StorageError，err 為 nil 時回傳 nil
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Kind 提供給呼叫端 (HTTP / gRPC) 的錯誤分類
type Kind string

const (
	KindAccountNotFound      Kind = "AccountNotFound"
	KindInsufficientFunds    Kind = "InsufficientFunds"
	KindStorageFailure       Kind = "StorageFailure"
	KindInvalidAmount        Kind = "InvalidAmount"
	KindSameAccount          Kind = "SameAccount"
	KindStatementNotFound    Kind = "StatementNotFound"
	KindAccountAlreadyExists Kind = "AccountAlreadyExists"
	KindInvalidAccount       Kind = "InvalidAccount"
	KindInvalidTransaction   Kind = "InvalidTransaction"
	KindInternal             Kind = "Internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrAccountNotFound, KindAccountNotFound},
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrStorageFailure, KindStorageFailure},
	{ErrInvalidAmount, KindInvalidAmount},
	{ErrSameAccount, KindSameAccount},
	{ErrStatementNotFound, KindStatementNotFound},
	{ErrAccountAlreadyExists, KindAccountAlreadyExists},
	{ErrInvalidAccount, KindInvalidAccount},
	{ErrInvalidTransaction, KindInvalidTransaction},
}

// KindOf 回傳錯誤分類，未知錯誤歸類為 Internal
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// ErrorOfKind 由分類還原 sentinel error (供 gRPC client 端使用)
func ErrorOfKind(kind Kind) (error, bool) {
	for _, k := range kinds {
		if k.kind == kind {
			return k.err, true
		}
	}
	return nil, false
}
