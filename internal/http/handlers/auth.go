package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/contactly/contacthub/internal/config"
	"github.com/contactly/contacthub/internal/domain/account"
	"github.com/contactly/contacthub/internal/repo/postgres"
	"github.com/contactly/contacthub/internal/security"
	"github.com/gin-gonic/gin"
)

type AccountReader interface {
	GetByUsername(ctx context.Context, username string) (account.Account, error)
}

type AccountWriter interface {
	Register(ctx context.Context, username, passwordHash string) (account.Account, error)
}

type TokenIssuer interface {
	IssueAccessToken(username string, accountID int64) (string, error)
}

type AuthHandler struct {
	accounts      AccountReader
	accountWriter AccountWriter
	jwt           TokenIssuer
}

func NewAuthHandler(accounts AccountReader, accountWriter AccountWriter, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{
		accounts:      accounts,
		accountWriter: accountWriter,
		jwt:           jwt,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Password string `json:"password" binding:"required,min=8"`
}

// form-encoded credentials, OAuth2 password-flow style
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create account")
		return
	}

	a, err := h.accountWriter.Register(cctx, req.Username, hash)

	if err != nil {
		if err == postgres.ErrUsernameTaken {
			RespondConflict(ctx, "username_taken", "Username is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create account")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":       a.ID,
		"username": a.Username,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindForm(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	// unknown username and wrong password share one response so the
	// endpoint cannot be used to enumerate accounts
	found, err := h.accounts.GetByUsername(cctx, req.Username)
	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
		return
	}

	err = security.CheckPassword(found.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
		return
	}

	accessToken, err := h.jwt.IssueAccessToken(found.Username, found.ID)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	})
}
