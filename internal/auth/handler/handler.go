package handler

import (
	"net/http"
	"strings"

	"https-examples/internal/auth/provider"
	"https-examples/internal/auth/resolver"
	"https-examples/internal/logger"
	"https-examples/internal/metrics"
	"https-examples/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	SuccessPath = "/main-page"
	FailurePath = "/failure"
	LogoutPath  = "/auth/logout"
)

// LoginPath is the route that starts a login with the named provider.
func LoginPath(providerName string) string {
	return "/auth/" + providerName
}

// CallbackPath is the fixed callback route for the named provider.
func CallbackPath(providerName string) string {
	return LoginPath(providerName) + "/callback"
}

type Handler struct {
	providers     *provider.Registry
	sessionStore  session.Store
	resolver      resolver.Resolver
	metrics       *metrics.Metrics
	publicBaseURL string
}

// NewHandler wires the login flow. resolver and m may be nil.
// publicBaseURL is the externally visible origin used to build callback
// URLs; when empty the request's host is used.
func NewHandler(
	registry *provider.Registry,
	sessionStore session.Store,
	resolver resolver.Resolver,
	m *metrics.Metrics,
	publicBaseURL string,
) *Handler {
	return &Handler{
		providers:     registry,
		sessionStore:  sessionStore,
		resolver:      resolver,
		metrics:       m,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// RegisterRoutes adds the login and callback routes of every registered
// provider. guard gates the logout route.
func (h *Handler) RegisterRoutes(r gin.IRouter, guard gin.HandlerFunc) {
	for _, name := range h.providers.Names() {
		p, _ := h.providers.Get(name)
		r.GET(LoginPath(name), h.login(p))
		r.GET(CallbackPath(name), h.callback(p))

		logger.Info("oauth provider routes registered", map[string]any{
			"provider": name,
			"login":    LoginPath(name),
			"callback": CallbackPath(name),
		})
	}

	r.Any(LogoutPath, guard, h.Logout)
}

func (h *Handler) callbackURL(c *gin.Context, providerName string) string {
	base := h.publicBaseURL
	if base == "" {
		base = "https://" + c.Request.Host
	}
	return base + CallbackPath(providerName)
}

func (h *Handler) login(p provider.OAuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := generateState(c)
		if err != nil {
			h.fail(c, p.Name(), "state generation failed", err)
			return
		}

		_, codeChallenge, err := generatePKCE(c)
		if err != nil {
			h.fail(c, p.Name(), "pkce generation failed", err)
			return
		}

		authURL := p.AuthCodeURL(state, codeChallenge, h.callbackURL(c, p.Name()))
		c.Redirect(http.StatusFound, authURL)
	}
}

func (h *Handler) callback(p provider.OAuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		providerName := p.Name()

		// CASE 1: provider reported an error (user denied consent, ...)
		if errParam := c.Query("error"); errParam != "" {
			logger.Warn("oauth callback returned error", map[string]any{
				"provider": providerName,
				"error":    errParam,
				"desc":     c.Query("error_description"),
			})
			h.fail(c, providerName, "provider error", nil)
			return
		}

		if !validateState(c) {
			h.fail(c, providerName, "invalid state", nil)
			return
		}

		// CASE 2: Normal OAuth callback
		code := c.Query("code")
		if code == "" {
			h.fail(c, providerName, "missing code", nil)
			return
		}

		codeVerifier := getPKCEVerifier(c)
		if codeVerifier == "" {
			h.fail(c, providerName, "missing pkce verifier", nil)
			return
		}

		profile, err := p.ExchangeCode(
			c.Request.Context(),
			code,
			codeVerifier,
			h.callbackURL(c, providerName),
		)
		if err != nil {
			h.fail(c, providerName, "code exchange failed", err)
			return
		}

		fields := map[string]any{
			"provider":  providerName,
			"subject":   profile.ID,
			"client_ip": c.ClientIP(),
		}

		if h.resolver != nil {
			userID, err := h.resolver.Resolve(c.Request.Context(), profile)
			if err != nil {
				h.fail(c, providerName, "account resolution failed", err)
				return
			}
			fields["user_id"] = userID
		}

		if err := h.sessionStore.Save(c.Writer, c.Request, profile); err != nil {
			h.fail(c, providerName, "session save failed", err)
			return
		}

		clearFlowCookies(c)
		if h.metrics != nil {
			h.metrics.Logins.WithLabelValues(providerName, metrics.OutcomeSuccess).Inc()
		}
		logger.Info("login succeeded", fields)

		c.Redirect(http.StatusFound, SuccessPath)
	}
}

// fail ends a login attempt on the failure page. There is no retry.
func (h *Handler) fail(c *gin.Context, providerName, reason string, err error) {
	fields := map[string]any{
		"provider": providerName,
		"reason":   reason,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	logger.Warn("login failed", fields)

	if h.metrics != nil {
		h.metrics.Logins.WithLabelValues(providerName, metrics.OutcomeFailure).Inc()
	}

	clearFlowCookies(c)
	c.Redirect(http.StatusFound, FailurePath)
}

// Logout clears the session and sends the user home.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessionStore.Clear(c.Writer, c.Request); err != nil {
		logger.Error("logout failed to clear session", map[string]any{
			"error": err.Error(),
		})
	}

	if h.metrics != nil {
		h.metrics.Logouts.Inc()
	}
	logger.Info("logout", map[string]any{
		"client_ip": c.ClientIP(),
	})

	c.Redirect(http.StatusFound, "/")
}
