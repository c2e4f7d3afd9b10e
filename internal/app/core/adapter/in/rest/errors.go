package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// statusOf domain.Kind 對應的 HTTP status
func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindAccountNotFound, domain.KindStatementNotFound:
		return http.StatusNotFound
	case domain.KindInsufficientFunds, domain.KindInvalidAmount, domain.KindSameAccount,
		domain.KindInvalidAccount, domain.KindInvalidTransaction:
		return http.StatusBadRequest
	case domain.KindAccountAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError 以 {"kind", "message"} 回傳錯誤，內部錯誤不外洩細節
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	code := statusOf(kind)
	message := err.Error()
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		if kind == domain.KindInternal {
			message = "internal error"
		} else {
			message = domain.ErrStorageFailure.Error()
		}
	}
	c.JSON(code, errorBody{Kind: string(kind), Message: message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody{Kind: "InvalidRequest", Message: err.Error()})
}
