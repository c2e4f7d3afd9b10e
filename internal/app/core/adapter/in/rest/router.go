// Package rest 對外的 HTTP API (gin)
package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter 建立 gin.Engine 並註冊所有路由
//
// 參數:
//
//	h: Handler
//	jwtSecret: HS256 簽章金鑰
//	logger: request log 使用
func NewRouter(h *Handler, jwtSecret []byte, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.POST("/users", h.Register)

	authed := api.Group("", AuthMiddleware(jwtSecret))
	authed.GET("/profile", h.Profile)

	statements := authed.Group("/statements")
	statements.GET("/balance", h.Balance)
	statements.POST("/deposit", h.Deposit)
	statements.POST("/withdraw", h.Withdraw)
	statements.POST("/transfers/:user_id", h.Transfer)
	statements.GET("/:statement_id", h.Statement)

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"account_id", currentAccount(c),
		)
	}
}
