package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, firstName, email, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type SessionService interface {
	Issue(ctx context.Context, userID int64, email string) (string, error)
	Resolve(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) error
}

type AuthHandler struct {
	users    UserStore
	sessions SessionService
	cfg      config.Config
}

func NewAuthHandler(users UserStore, sessions SessionService, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
	}
}

type SignUpRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, req.FirstName, req.Email, hash)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			RespondConflict(ctx, "Email is already registered")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, err := h.sessions.Issue(cctx, u.ID, u.Email)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"userId":  u.ID,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			// Same status and body as a wrong password: an unknown email must
			// be indistinguishable from a bad credential.
			RespondUnauthorized(ctx, "Invalid credentials")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	token, err := h.sessions.Issue(cctx, foundUser.ID, foundUser.Email)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"userId":  foundUser.ID,
	})
}

// Logout always succeeds: the registry delete is idempotent and a missing
// cookie still gets cleared client-side.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	token, err := ctx.Cookie(auth.CookieName)

	if err == nil && token != "" {
		cctx, cancel := config.WithTimeout(3 * time.Second)

		defer cancel()

		_ = h.sessions.Revoke(cctx, token)
	}

	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// Me never fails the request: any auth problem degrades to {"user": null} so
// the client can render a logged-out view.
func (h *AuthHandler) Me(ctx *gin.Context) {
	noUser := func() {
		ctx.JSON(http.StatusOK, gin.H{"user": nil})
	}

	token, err := ctx.Cookie(auth.CookieName)

	if err != nil || token == "" {
		noUser()
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	userID, err := h.sessions.Resolve(cctx, token)

	if err != nil {
		noUser()
		return
	}

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		noUser()
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":        u.ID,
			"firstname": u.FirstName,
			"email":     u.Email,
		},
	})
}

// Cookie helpers

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		auth.CookieName,
		token,
		int(h.cfg.SessionTTL.Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		auth.CookieName,
		"",
		-1, // serialized as Max-Age=0
		"/",
		"",
		secure,
		true,
	)
}
