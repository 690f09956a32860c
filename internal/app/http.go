package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"https-examples/internal/auth/handler"
	"https-examples/internal/auth/provider"
	"https-examples/internal/auth/provider/google"
	"https-examples/internal/auth/provider/keycloak"
	"https-examples/internal/auth/resolver"
	"https-examples/internal/config"
	"https-examples/internal/metrics"
	"https-examples/internal/middleware"
	"https-examples/internal/session"
	"https-examples/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"
	SecurePath  = "/secure"
	SecretPath  = "/secret"
)

// Deps are the collaborators of the router. Only Metrics is used by the
// helmet example; the OAuth examples need Store, Registry and Assets.
// Resolver is optional.
type Deps struct {
	Store         session.Store
	Registry      *provider.Registry
	Resolver      resolver.Resolver
	Metrics       *metrics.Metrics
	Assets        *web.Assets
	PublicBaseURL string
}

// NewRouter builds the route table and stage pipeline of one example.
func NewRouter(example config.Example, deps Deps) (*gin.Engine, error) {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	router := gin.New()
	stages := []middleware.Stage{
		middleware.Recovery(),
		middleware.AccessLog(deps.Metrics),
		middleware.SecurityHeaders(),
	}

	switch example {
	case config.ExampleHelmet:
		middleware.Use(router, stages...)
		router.GET("/", web.Hello)

	case config.ExampleOAuth, config.ExampleSession:
		if deps.Store == nil || deps.Registry == nil || deps.Assets == nil {
			return nil, errors.New("app: store, provider registry and assets are required")
		}

		authMiddleware := middleware.NewAuthMiddleware(deps.Store, func(r *http.Request) {
			deps.Metrics.GuardDenials.WithLabelValues(r.URL.Path).Inc()
		})

		if example == config.ExampleSession {
			stages = append(stages, middleware.CORS())
		}
		stages = append(stages, middleware.GinResolveSession(authMiddleware))
		middleware.Use(router, stages...)

		guard := middleware.GinRequireAuth(authMiddleware)
		detailPath := SecretPath
		if example == config.ExampleOAuth {
			detailPath = SecurePath
		}
		pages := web.NewPages(deps.Assets, handler.LoginPath(google.ProviderName), handler.LogoutPath, detailPath)
		authHandler := handler.NewHandler(deps.Registry, deps.Store, deps.Resolver, deps.Metrics, deps.PublicBaseURL)

		// ----------------------------
		// Public Routes
		// ----------------------------

		router.GET("/", pages.Index)
		router.GET(handler.FailurePath, pages.Failure)
		authHandler.RegisterRoutes(router, guard.Handler)

		// ----------------------------
		// Gated Routes
		// ----------------------------

		router.GET(handler.SuccessPath, middleware.Chain(pages.MainPage, guard)...)
		if example == config.ExampleOAuth {
			router.Any(detailPath, middleware.Chain(pages.Secure, guard)...)
		} else {
			router.Any(detailPath, middleware.Chain(pages.Secret, guard)...)
		}

	default:
		return nil, fmt.Errorf("app: unknown example %q", example)
	}

	router.GET(HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET(MetricsPath, gin.WrapH(deps.Metrics.Handler()))

	return router, nil
}

func setupHTTP(ctx context.Context, example config.Example, cfg config.Config) (*gin.Engine, func() error, error) {
	m := metrics.New()

	if example == config.ExampleHelmet {
		router, err := NewRouter(example, Deps{Metrics: m})
		return router, nil, err
	}

	assets, err := web.LoadAssets(cfg.PublicDir)
	if err != nil {
		return nil, nil, err
	}

	registry, err := setupProviders(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	infra, err := setupInfra(ctx, example, cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := setupStore(example, cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	var identityResolver resolver.Resolver
	if infra.DB != nil {
		identityResolver = resolver.NewDBResolver(infra.DB)
	}

	router, err := NewRouter(example, Deps{
		Store:         store,
		Registry:      registry,
		Resolver:      identityResolver,
		Metrics:       m,
		Assets:        assets,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, infra.Close, nil
}

func setupProviders(ctx context.Context, cfg config.Config) (*provider.Registry, error) {
	googleProvider, err := google.New(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret)
	if err != nil {
		return nil, err
	}

	providers := []provider.OAuthProvider{googleProvider}

	if cfg.KeycloakIssuer != "" {
		keycloakProvider, err := keycloak.New(
			ctx,
			cfg.KeycloakIssuer,
			cfg.KeycloakClientID,
			cfg.KeycloakPublicBaseURL,
		)
		if err != nil {
			return nil, err
		}
		providers = append(providers, keycloakProvider)
	}

	return provider.NewRegistry(providers...), nil
}

func setupStore(example config.Example, cfg config.Config, infra *Infra) (session.Store, error) {
	if example == config.ExampleOAuth {
		return session.NewMemoryStore(), nil
	}

	if infra.Redis != nil {
		return session.NewRedisStore(infra.Redis.Client, cfg.CookieKeys(), session.DefaultCookieOptions)
	}
	return session.NewCookieStore(cfg.CookieKeys(), session.DefaultCookieOptions)
}
