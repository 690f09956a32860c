package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"https-examples/internal/auth"
	"https-examples/internal/auth/provider"
	"https-examples/internal/auth/resolver"
	"https-examples/internal/metrics"
	"https-examples/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeProvider implements provider.OAuthProvider for testing
type fakeProvider struct {
	profile      *auth.Profile
	exchangeErr  error
	gotCode      string
	gotVerifier  string
	gotRedirect  string
	gotChallenge string
	exchanges    int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) AuthCodeURL(state, codeChallenge, redirectURL string) string {
	f.gotChallenge = codeChallenge
	q := url.Values{
		"state":          {state},
		"code_challenge": {codeChallenge},
		"redirect_uri":   {redirectURL},
		"scope":          {"email profile"},
	}
	return "https://idp.example.com/authorize?" + q.Encode()
}

func (f *fakeProvider) ExchangeCode(ctx context.Context, code, codeVerifier, redirectURL string) (*auth.Profile, error) {
	f.exchanges++
	f.gotCode = code
	f.gotVerifier = codeVerifier
	f.gotRedirect = redirectURL
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.profile, nil
}

type fakeResolver struct {
	err   error
	calls int
}

func (r *fakeResolver) Resolve(ctx context.Context, p *auth.Profile) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return "user-1", nil
}

// countingStore wraps MemoryStore and counts saves.
type countingStore struct {
	*session.MemoryStore
	saves int
}

func (s *countingStore) Save(w http.ResponseWriter, r *http.Request, p *auth.Profile) error {
	s.saves++
	return s.MemoryStore.Save(w, r, p)
}

type testEnv struct {
	engine   *gin.Engine
	provider *fakeProvider
	store    *countingStore
	resolver *fakeResolver
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T, withResolver bool) *testEnv {
	t.Helper()
	env := &testEnv{
		provider: &fakeProvider{profile: &auth.Profile{
			ID:          "123",
			DisplayName: "Jane",
			Emails:      []auth.Email{{Value: "jane@x.com", Verified: true}},
			Provider:    "fake",
		}},
		store:   &countingStore{MemoryStore: session.NewMemoryStore()},
		metrics: metrics.New(),
	}

	var res resolver.Resolver
	if withResolver {
		env.resolver = &fakeResolver{}
		res = env.resolver
	}
	h := NewHandler(provider.NewRegistry(env.provider), env.store, res, env.metrics, "https://app.example.com/")

	env.engine = gin.New()
	h.RegisterRoutes(env.engine, func(c *gin.Context) { c.Next() })
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.engine.ServeHTTP(rr, req)
	return rr
}

// startLogin performs GET /auth/fake and returns the state and the flow cookies.
func (e *testEnv) startLogin(t *testing.T) (string, []*http.Cookie) {
	t.Helper()
	rr := e.do(httptest.NewRequest(http.MethodGet, "/auth/fake", nil))
	if rr.Code != http.StatusFound {
		t.Fatalf("login status = %d, want 302", rr.Code)
	}
	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	return loc.Query().Get("state"), rr.Result().Cookies()
}

func callbackRequest(query url.Values, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/auth/fake/callback?"+query.Encode(), nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestLogin_RedirectsToProvider(t *testing.T) {
	env := newTestEnv(t, false)
	rr := env.do(httptest.NewRequest(http.MethodGet, "/auth/fake", nil))

	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	loc, _ := url.Parse(rr.Header().Get("Location"))
	if loc.Host != "idp.example.com" {
		t.Errorf("redirected to %s, want provider", loc)
	}
	if got := loc.Query().Get("redirect_uri"); got != "https://app.example.com/auth/fake/callback" {
		t.Errorf("redirect_uri = %q", got)
	}
	if loc.Query().Get("state") == "" {
		t.Error("expected state parameter")
	}

	names := map[string]bool{}
	for _, c := range rr.Result().Cookies() {
		names[c.Name] = true
		if !c.HttpOnly {
			t.Errorf("cookie %s should be HttpOnly", c.Name)
		}
	}
	if !names[stateCookieName] || !names[pkceCookieName] {
		t.Errorf("expected state and pkce cookies, got %v", names)
	}
}

func TestCallback_Success(t *testing.T) {
	env := newTestEnv(t, true)
	state, cookies := env.startLogin(t)

	rr := env.do(callbackRequest(url.Values{"code": {"auth-code"}, "state": {state}}, cookies))

	if rr.Code != http.StatusFound || rr.Header().Get("Location") != SuccessPath {
		t.Fatalf("callback = %d %q, want 302 %s", rr.Code, rr.Header().Get("Location"), SuccessPath)
	}
	if env.store.saves != 1 {
		t.Errorf("expected exactly one profile write, got %d", env.store.saves)
	}
	p, _ := env.store.Load(httptest.NewRequest(http.MethodGet, "/main-page", nil))
	if p == nil || p.DisplayName != "Jane" {
		t.Fatalf("stored profile = %+v", p)
	}

	if env.provider.gotCode != "auth-code" {
		t.Errorf("exchanged code = %q", env.provider.gotCode)
	}
	if pkceChallenge(env.provider.gotVerifier) != env.provider.gotChallenge {
		t.Error("verifier sent on exchange does not match the challenge sent on login")
	}
	if env.provider.gotRedirect != "https://app.example.com/auth/fake/callback" {
		t.Errorf("exchange redirect = %q", env.provider.gotRedirect)
	}
	if env.resolver.calls != 1 {
		t.Errorf("resolver calls = %d, want 1", env.resolver.calls)
	}
	if got := testutil.ToFloat64(env.metrics.Logins.WithLabelValues("fake", "success")); got != 1 {
		t.Errorf("success logins = %v", got)
	}

	for _, c := range rr.Result().Cookies() {
		if (c.Name == stateCookieName || c.Name == pkceCookieName) && c.MaxAge >= 0 {
			t.Errorf("flow cookie %s not cleared", c.Name)
		}
	}
}

func TestCallback_Failures(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(env *testEnv)
		query        func(state string) url.Values
		dropCookies  bool
		wantExchange bool
	}{
		{
			name:  "provider error",
			query: func(state string) url.Values { return url.Values{"error": {"access_denied"}, "state": {state}} },
		},
		{
			name:  "state mismatch",
			query: func(string) url.Values { return url.Values{"code": {"c"}, "state": {"forged"}} },
		},
		{
			name:  "missing state",
			query: func(string) url.Values { return url.Values{"code": {"c"}} },
		},
		{
			name:        "missing cookies",
			query:       func(state string) url.Values { return url.Values{"code": {"c"}, "state": {state}} },
			dropCookies: true,
		},
		{
			name:  "missing code",
			query: func(state string) url.Values { return url.Values{"state": {state}} },
		},
		{
			name:         "exchange fails",
			setup:        func(env *testEnv) { env.provider.exchangeErr = errors.New("invalid_grant") },
			query:        func(state string) url.Values { return url.Values{"code": {"c"}, "state": {state}} },
			wantExchange: true,
		},
		{
			name:         "resolver fails",
			setup:        func(env *testEnv) { env.resolver.err = errors.New("db down") },
			query:        func(state string) url.Values { return url.Values{"code": {"c"}, "state": {state}} },
			wantExchange: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, true)
			if tt.setup != nil {
				tt.setup(env)
			}
			state, cookies := env.startLogin(t)
			if tt.dropCookies {
				cookies = nil
			}

			rr := env.do(callbackRequest(tt.query(state), cookies))

			if rr.Code != http.StatusFound || rr.Header().Get("Location") != FailurePath {
				t.Fatalf("callback = %d %q, want 302 %s", rr.Code, rr.Header().Get("Location"), FailurePath)
			}
			if env.store.saves != 0 {
				t.Errorf("expected no profile write, got %d", env.store.saves)
			}
			if got := env.provider.exchanges > 0; got != tt.wantExchange {
				t.Errorf("exchange attempted = %v, want %v", got, tt.wantExchange)
			}
			if env.provider.exchanges > 1 {
				t.Errorf("exchange retried %d times", env.provider.exchanges)
			}
			if got := testutil.ToFloat64(env.metrics.Logins.WithLabelValues("fake", "failure")); got != 1 {
				t.Errorf("failure logins = %v, want 1", got)
			}
		})
	}
}

func TestCallback_UsesRequestHostWithoutBaseURL(t *testing.T) {
	p := &fakeProvider{profile: &auth.Profile{ID: "1"}}
	h := NewHandler(provider.NewRegistry(p), session.NewMemoryStore(), nil, nil, "")
	r := gin.New()
	h.RegisterRoutes(r, func(c *gin.Context) { c.Next() })

	req := httptest.NewRequest(http.MethodGet, "/auth/fake", nil)
	req.Host = "localhost:4002"
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	loc, _ := url.Parse(rr.Header().Get("Location"))
	if got := loc.Query().Get("redirect_uri"); got != "https://localhost:4002/auth/fake/callback" {
		t.Errorf("redirect_uri = %q", got)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, false)
	req := httptest.NewRequest(http.MethodGet, LogoutPath, nil)
	_ = env.store.Save(httptest.NewRecorder(), req, &auth.Profile{ID: "123"})

	rr := env.do(req)

	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/" {
		t.Fatalf("logout = %d %q, want 302 /", rr.Code, rr.Header().Get("Location"))
	}
	if p, _ := env.store.Load(req); p != nil {
		t.Errorf("profile still present after logout: %+v", p)
	}
	if got := testutil.ToFloat64(env.metrics.Logouts); got != 1 {
		t.Errorf("logouts = %v", got)
	}
}
