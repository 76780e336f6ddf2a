package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	resolveFn func(ctx context.Context, token string) (int64, error)
}

func (f *fakeResolver) Resolve(ctx context.Context, token string) (int64, error) {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, token)
	}

	return 0, errors.New("unauthenticated")
}

func guardedRouter(resolver *fakeResolver, handler gin.HandlerFunc) *gin.Engine {
	m := middlewares.NewAuthMiddleware(resolver)

	r := gin.New()
	r.GET("/protected", m.RequireSession(), handler)

	return r
}

func TestRequireSession_NoCookie(t *testing.T) {
	reached := false

	r := guardedRouter(&fakeResolver{}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	if reached {
		t.Fatalf("handler must not run without a session")
	}
}

func TestRequireSession_ResolveFails(t *testing.T) {
	reached := false

	r := guardedRouter(&fakeResolver{}, func(c *gin.Context) {
		reached = true
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "revoked-or-expired"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	if reached {
		t.Fatalf("handler must not run when resolution fails")
	}
}

func TestRequireSession_InjectsUserID(t *testing.T) {
	resolver := &fakeResolver{
		resolveFn: func(ctx context.Context, token string) (int64, error) {
			if token != "tok" {
				return 0, errors.New("unauthenticated")
			}

			return 7, nil
		},
	}

	var gotID int64
	var gotOK bool

	r := guardedRouter(resolver, func(c *gin.Context) {
		gotID, gotOK = middlewares.UserIDFromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "tok"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if !gotOK || gotID != 7 {
		t.Fatalf("UserIDFromContext = (%d, %v), want (7, true)", gotID, gotOK)
	}
}
