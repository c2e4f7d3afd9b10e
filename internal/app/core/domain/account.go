package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account 帳戶只有身分資訊，餘額一律由交易紀錄推導
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAccount 建立新帳戶，ID 使用 UUID
func NewAccount(name, email string, now time.Time) (*Account, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, ErrInvalidAccount
	}
	return &Account{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
	}, nil
}
