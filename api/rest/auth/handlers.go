package auth

import (
	stderrors "errors"
	"net/http"
	"time"

	"codeberg.org/iburba/server/iburba/accounts"
	"codeberg.org/iburba/server/internal/auth"
	"codeberg.org/iburba/server/internal/errors"
	"codeberg.org/iburba/server/internal/logger"
	"github.com/gin-gonic/gin"
)

const invalidCredentials = "invalid email or password"

// RegisterHandler godoc
// @Summary Register an account
// @Description Create an account with email and password and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account details"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/register [post]
func RegisterHandler(store AccountStore, tokens TokenIssuer, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		plan := accounts.PlanFree
		if req.Plan != "" {
			plan = accounts.Plan(req.Plan)
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			errors.InternalError(c, "failed to hash password", err)
			return
		}

		account, err := store.Create(c.Request.Context(), accounts.NormalizeEmail(req.Email), hash, plan)
		if err != nil {
			if stderrors.Is(err, accounts.ErrEmailTaken) {
				errors.Conflict(c, "email already registered")
				return
			}

			errors.InternalError(c, "failed to create account", err)
			return
		}

		token, err := tokens.Generate(account.ID, account.Email)
		if err != nil {
			errors.InternalError(c, "failed to generate token", err)
			return
		}

		logger.FromContext(c.Request.Context()).Info("account registered", "user_id", account.ID, "plan", account.Plan)

		c.JSON(http.StatusCreated, TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int(ttl.Seconds()),
			Plan:        account.Plan,
		})
	}
}

// LoginHandler godoc
// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/login [post]
func LoginHandler(store AccountStore, tokens TokenIssuer, usage UsageReader, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		ctx := c.Request.Context()

		account, err := store.FindByEmail(ctx, accounts.NormalizeEmail(req.Email))
		if err != nil {
			if stderrors.Is(err, accounts.ErrNotFound) {
				errors.Unauthorized(c, invalidCredentials)
				return
			}

			errors.InternalError(c, "failed to load account", err)
			return
		}

		if !auth.CheckPassword(account.PasswordHash, req.Password) {
			errors.Unauthorized(c, invalidCredentials)
			return
		}

		token, err := tokens.Generate(account.ID, account.Email)
		if err != nil {
			errors.InternalError(c, "failed to generate token", err)
			return
		}

		if err := store.TouchLogin(ctx, account.ID); err != nil {
			logger.FromContext(ctx).Warn("failed to record login", "user_id", account.ID, "error", err)
		}

		used, err := usage.DailyUsage(ctx, account.ID)
		if err != nil {
			logger.FromContext(ctx).Warn("failed to read daily usage", "user_id", account.ID, "error", err)
		}

		c.JSON(http.StatusOK, TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int(ttl.Seconds()),
			Plan:        account.Plan,
			DailyUsage:  used,
		})
	}
}

// GetCurrentUserHandler godoc
// @Summary Get current account
// @Description Get the authenticated account with today's usage
// @Tags auth
// @Produce json
// @Success 200 {object} MeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(store AccountStore, usage UsageReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		ctx := c.Request.Context()

		account, err := store.FindByID(ctx, userID)
		if err != nil {
			if stderrors.Is(err, accounts.ErrNotFound) {
				errors.NotFound(c, "account")
				return
			}

			errors.InternalError(c, "failed to load account", err)
			return
		}

		used, err := usage.DailyUsage(ctx, account.ID)
		if err != nil {
			errors.InternalError(c, "failed to read usage", err)
			return
		}

		remaining, err := usage.Remaining(ctx, account.ID, account.Plan)
		if err != nil {
			errors.InternalError(c, "failed to read usage", err)
			return
		}

		c.JSON(http.StatusOK, MeResponse{
			Account:        account,
			DailyUsage:     used,
			RemainingUsage: remaining,
		})
	}
}
