package handler

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"https-examples/internal/session"
	"https-examples/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	pkceCookieName = "__oauth_pkce"
	pkceTTL        = 5 * time.Minute
)

func generatePKCE(c *gin.Context) (verifier string, challenge string, err error) {
	verifier, err = utils.RandomString(32)
	if err != nil {
		return "", "", err
	}

	challenge = pkceChallenge(verifier)

	session.SetCookie(c.Writer, pkceCookieName, verifier, pkceTTL, session.DefaultCookieOptions)
	return verifier, challenge, nil
}

// pkceChallenge derives the S256 code challenge.
func pkceChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

func getPKCEVerifier(c *gin.Context) string {
	v, _ := session.ReadCookie(c.Request, pkceCookieName)
	return v
}

// clearFlowCookies removes the state and PKCE cookies once the callback
// has been handled, successfully or not.
func clearFlowCookies(c *gin.Context) {
	session.ClearCookie(c.Writer, stateCookieName, session.DefaultCookieOptions)
	session.ClearCookie(c.Writer, pkceCookieName, session.DefaultCookieOptions)
}
