package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/iburba/server/iburba/accounts"
	"codeberg.org/iburba/server/iburba/usage"
	"codeberg.org/iburba/server/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router *gin.Engine
	store  *accounts.MemoryStore
	usage  *usage.MemoryStore
	ledger *usage.Ledger
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenManager(auth.TokenConfig{Secret: "test-secret", TTL: 30 * time.Minute})
	require.NoError(t, err)

	store := accounts.NewMemoryStore()
	usageStore := usage.NewMemoryStore()
	ledger := usage.NewLedger(usageStore, usage.Config{
		Limits:          usage.Limits{Free: 3, Pro: 50, Business: usage.Unlimited},
		SystemDailyCost: 50,
	})

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), store, tokens, ledger, auth.NewGate(tokens, store), tokens.TTL())

	return &fixture{router: router, store: store, usage: usageStore, ledger: ledger}
}

func (f *fixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodPost, "/api/v1/auth/register", `{"email":"Ada@Example.com","password":"correct-horse","plan":"pro"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var registered TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, "bearer", registered.TokenType)
	assert.Equal(t, accounts.PlanPro, registered.Plan)
	assert.Equal(t, 1800, registered.ExpiresIn)

	account, err := f.store.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	f.usage.Put(usage.UsageRecord{UserID: account.ID, Day: f.ledger.Today(), Count: 4, Cost: 0.3})

	w = f.do(http.MethodPost, "/api/v1/auth/login", `{"email":"ada@example.com","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var loggedIn TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loggedIn))
	assert.NotEmpty(t, loggedIn.AccessToken)
	assert.Equal(t, 4, loggedIn.DailyUsage)

	account, err = f.store.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.NotNil(t, account.LastLoginAt)
}

func TestRegister_Validation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"correct-horse"}`},
		{"bad email", `{"email":"nope","password":"correct-horse"}`},
		{"short password", `{"email":"a@b.co","password":"short"}`},
		{"unknown plan", `{"email":"a@b.co","password":"correct-horse","plan":"gold"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/api/v1/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := setup(t)

	body := `{"email":"dup@example.com","password":"correct-horse"}`
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/v1/auth/register", body, "").Code)

	w := f.do(http.MethodPost, "/api/v1/auth/register", `{"email":"DUP@example.com","password":"other-horse"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	f := setup(t)
	require.Equal(t, http.StatusCreated,
		f.do(http.MethodPost, "/api/v1/auth/register", `{"email":"ada@example.com","password":"correct-horse"}`, "").Code)

	wrongPassword := f.do(http.MethodPost, "/api/v1/auth/login", `{"email":"ada@example.com","password":"battery-staple"}`, "")
	unknownEmail := f.do(http.MethodPost, "/api/v1/auth/login", `{"email":"bob@example.com","password":"correct-horse"}`, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// same body so accounts can't be enumerated
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestGetCurrentUser(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodPost, "/api/v1/auth/register", `{"email":"ada@example.com","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var registered TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	w = f.do(http.MethodGet, "/api/v1/auth/me", "", registered.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "ada@example.com", me.Account.Email)
	assert.Equal(t, accounts.PlanFree, me.Account.Plan)
	assert.Equal(t, 0, me.DailyUsage)
	assert.Equal(t, 3, me.RemainingUsage)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestGetCurrentUser_Unauthenticated(t *testing.T) {
	f := setup(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/auth/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/auth/me", "", "not-a-token").Code)
}

func TestGetCurrentUser_DeletedAccount(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodPost, "/api/v1/auth/register", `{"email":"ada@example.com","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var registered TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	account, err := f.store.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	f.store.Delete(context.Background(), account.ID)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/auth/me", "", registered.AccessToken).Code)
}
