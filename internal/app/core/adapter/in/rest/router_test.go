package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/out/storetest"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-statement-ledger/pkg/keylock"
)

var testSecret = []byte("test-secret")

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir, _ := memory.NewDirectory(nil)
	store, _ := memory.NewTransactionStore(nil)
	logger := storetest.DiscardLogger()
	h := NewHandler(
		usecase.NewLedgerService(dir, store, keylock.NewLocal(), logger),
		usecase.NewAccountService(dir, logger),
		logger,
	)
	return NewRouter(h, testSecret, logger)
}

func token(t *testing.T, accountID string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   accountID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func do(t *testing.T, r http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func register(t *testing.T, r http.Handler, name string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/users", "", gin.H{"name": name, "email": name + "@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %d: %s", w.Code, w.Body.String())
	}
	return decode[domain.Account](t, w).ID
}

func TestStatementFlow(t *testing.T) {
	r := newTestRouter(t)
	sender := register(t, r, "sender")
	receiver := register(t, r, "receiver")
	senderToken := token(t, sender)

	w := do(t, r, http.MethodPost, "/api/v1/statements/deposit", senderToken, gin.H{"amount": 900, "description": "Initial transaction"})
	if w.Code != http.StatusCreated {
		t.Fatalf("deposit %d: %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/v1/statements/withdraw", senderToken, gin.H{"amount": "1000"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("overdraft %d: %s", w.Code, w.Body.String())
	}
	if body := decode[errorBody](t, w); body.Kind != "InsufficientFunds" || body.Message != "insufficient funds" {
		t.Fatalf("error body %+v", body)
	}

	w = do(t, r, http.MethodPost, "/api/v1/statements/transfers/"+receiver, senderToken, gin.H{"amount": 800, "description": "rent"})
	if w.Code != http.StatusCreated {
		t.Fatalf("transfer %d: %s", w.Code, w.Body.String())
	}
	result := decode[domain.TransferResult](t, w)
	if result.Transferred.ReceiverID != receiver || result.Received.SenderID != sender {
		t.Fatalf("transfer result %+v", result)
	}

	w = do(t, r, http.MethodGet, "/api/v1/statements/balance", senderToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("balance %d: %s", w.Code, w.Body.String())
	}
	balance := decode[domain.Balance](t, w)
	if !balance.Balance.Equal(decimal.NewFromInt(100)) || len(balance.Statements) != 2 {
		t.Fatalf("balance %+v", balance)
	}

	// 收款方可以查到自己那筆，付款方查不到
	receiverToken := token(t, receiver)
	path := "/api/v1/statements/" + result.Received.ID.String()
	if w := do(t, r, http.MethodGet, path, receiverToken, nil); w.Code != http.StatusOK {
		t.Fatalf("own statement %d: %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodGet, path, senderToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign statement %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/v1/profile", receiverToken, nil)
	if w.Code != http.StatusOK || decode[domain.Account](t, w).Email != "receiver@example.com" {
		t.Fatalf("profile %d: %s", w.Code, w.Body.String())
	}
}

func TestErrorStatuses(t *testing.T) {
	r := newTestRouter(t)
	acc := register(t, r, "a")
	tok := token(t, acc)

	cases := []struct {
		name   string
		method string
		path   string
		bearer string
		body   any
		status int
		kind   string
	}{
		{"transfer to unknown", http.MethodPost, "/api/v1/statements/transfers/ghost", tok, gin.H{"amount": 1}, http.StatusNotFound, "AccountNotFound"},
		{"transfer to self", http.MethodPost, "/api/v1/statements/transfers/" + acc, tok, gin.H{"amount": 1}, http.StatusBadRequest, "SameAccount"},
		{"negative deposit", http.MethodPost, "/api/v1/statements/deposit", tok, gin.H{"amount": -5}, http.StatusBadRequest, "InvalidAmount"},
		{"duplicate email", http.MethodPost, "/api/v1/users", "", gin.H{"name": "b", "email": "a@example.com"}, http.StatusConflict, "AccountAlreadyExists"},
		{"bad email", http.MethodPost, "/api/v1/users", "", gin.H{"name": "b", "email": "nope"}, http.StatusBadRequest, "InvalidRequest"},
		{"unknown token subject", http.MethodGet, "/api/v1/statements/balance", token(t, "ghost"), nil, http.StatusNotFound, "AccountNotFound"},
		{"missing token", http.MethodGet, "/api/v1/statements/balance", "", nil, http.StatusUnauthorized, "Unauthorized"},
		{"garbage token", http.MethodGet, "/api/v1/profile", "not-a-jwt", nil, http.StatusUnauthorized, "Unauthorized"},
		{"malformed statement id", http.MethodGet, "/api/v1/statements/xyz", tok, nil, http.StatusNotFound, "StatementNotFound"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, tc.bearer, tc.body)
			if w.Code != tc.status {
				t.Fatalf("status=%d want %d: %s", w.Code, tc.status, w.Body.String())
			}
			if body := decode[errorBody](t, w); body.Kind != tc.kind {
				t.Fatalf("kind=%s want %s", body.Kind, tc.kind)
			}
		})
	}
}

func TestRejectsOtherSigningMethods(t *testing.T) {
	r := newTestRouter(t)
	acc := register(t, r, "a")
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: acc}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if w := do(t, r, http.MethodGet, "/api/v1/profile", unsigned, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	if w := do(t, r, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}
