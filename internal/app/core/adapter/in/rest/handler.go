package rest

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/usecase"
)

// Handler 對外 HTTP API
type Handler struct {
	ledger   *usecase.LedgerService
	accounts *usecase.AccountService
	logger   *slog.Logger
}

func NewHandler(ledger *usecase.LedgerService, accounts *usecase.AccountService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		ledger:   ledger,
		accounts: accounts,
		logger:   logger,
	}
}

type registerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// amountRequest amount 可為 JSON 數字或字串
type amountRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Register POST /api/v1/users
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	account, err := h.accounts.Register(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// Profile GET /api/v1/profile
func (h *Handler) Profile(c *gin.Context) {
	account, err := h.accounts.Profile(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// Balance GET /api/v1/statements/balance
func (h *Handler) Balance(c *gin.Context) {
	balance, err := h.ledger.GetBalance(c.Request.Context(), currentAccount(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// Deposit POST /api/v1/statements/deposit
func (h *Handler) Deposit(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tran, err := h.ledger.Deposit(c.Request.Context(), currentAccount(c), req.Amount, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tran)
}

// Withdraw POST /api/v1/statements/withdraw
func (h *Handler) Withdraw(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tran, err := h.ledger.Withdraw(c.Request.Context(), currentAccount(c), req.Amount, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tran)
}

// Transfer POST /api/v1/statements/transfers/:user_id
// 付款方一律是 token 的帳戶
func (h *Handler) Transfer(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.ledger.Transfer(c.Request.Context(), currentAccount(c), c.Param("user_id"), req.Amount, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Statement GET /api/v1/statements/:statement_id
func (h *Handler) Statement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("statement_id"))
	if err != nil {
		h.respondError(c, domain.ErrStatementNotFound)
		return
	}
	tran, err := h.ledger.GetStatement(c.Request.Context(), currentAccount(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tran)
}
