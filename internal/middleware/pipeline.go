package middleware

import (
	"github.com/gin-gonic/gin"

	"https-examples/internal/logger"
)

// Stage is one named step of a request pipeline. A stage short-circuits by
// writing a response and aborting the gin context.
type Stage struct {
	Name    string
	Handler gin.HandlerFunc
}

// Use installs stages on r in order.
func Use(r gin.IRoutes, stages ...Stage) {
	names := make([]string, 0, len(stages))
	for _, s := range stages {
		r.Use(s.Handler)
		names = append(names, s.Name)
	}
	logger.Info("pipeline installed", map[string]any{
		"stages": names,
	})
}

// Chain returns the handlers of stages followed by final, for a single route.
func Chain(final gin.HandlerFunc, stages ...Stage) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(stages)+1)
	for _, s := range stages {
		handlers = append(handlers, s.Handler)
	}
	return append(handlers, final)
}
