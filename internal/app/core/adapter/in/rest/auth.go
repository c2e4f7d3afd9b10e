package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ctxAccountID gin.Context 中存放已驗證帳戶 ID 的 key
const ctxAccountID = "account_id"

var errMissingSubject = errors.New("token has no subject")

// AuthMiddleware 驗證 Authorization: Bearer <HS256 JWT>，sub 即帳戶 ID
// Token 由外部的登入服務簽發，這裡只驗簽
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) {
		return secret, nil
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authorization token not provided")
			return
		}
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(parts[1], claims, keyFunc)
		if err == nil && claims.Subject == "" {
			err = errMissingSubject
		}
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ctxAccountID, claims.Subject)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Kind: "Unauthorized", Message: message})
}

// currentAccount 取出 AuthMiddleware 設定的帳戶 ID
func currentAccount(c *gin.Context) string {
	return c.GetString(ctxAccountID)
}
