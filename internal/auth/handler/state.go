package handler

import (
	"crypto/subtle"
	"time"

	"https-examples/internal/session"
	"https-examples/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	stateCookieName = "__oauth_state"
	stateTTL        = 5 * time.Minute
)

func generateState(c *gin.Context) (string, error) {
	state, err := utils.RandomString(32)
	if err != nil {
		return "", err
	}

	session.SetCookie(c.Writer, stateCookieName, state, stateTTL, session.DefaultCookieOptions)
	return state, nil
}

func validateState(c *gin.Context) bool {
	stateQuery := c.Query("state")
	if stateQuery == "" {
		return false
	}

	stored, ok := session.ReadCookie(c.Request, stateCookieName)
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(stateQuery)) == 1
}
