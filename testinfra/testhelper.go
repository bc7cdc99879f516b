package testinfra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sunflow/authority"
	"sunflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSession builds a session with the given company scoped permissions,
// e.g. "contract-write_100".
func BuildSession(uid types.ID, perms ...string) *session.Session {
	return &session.Session{
		Token:    "test-token",
		Identity: session.Identity{ID: uid, Name: "user " + uid.String()},
		Perms:    authority.Permissions(perms),
		Context:  context.Background(),
	}
}

// SessionFilter injects a fixed session into every request, replacing
// SimpleAuthFilter in REST tests.
func SessionFilter(s *session.Session) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session.SaveSecurityContext(ctx, s)
		ctx.Next()
	}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w.Header()
}
