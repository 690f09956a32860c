package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// bridge runs a net/http middleware as a gin handler. The gin chain only
// continues when the middleware calls its next handler.
func bridge(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
		}
	}
}

// GinResolveSession adapts ResolveSession to gin as a pipeline stage.
func GinResolveSession(a *AuthMiddleware) Stage {
	return Stage{Name: "session", Handler: bridge(a.ResolveSession)}
}

// GinRequireAuth adapts RequireAuth to gin as a pipeline stage.
func GinRequireAuth(a *AuthMiddleware) Stage {
	return Stage{Name: "guard", Handler: bridge(a.RequireAuth)}
}
