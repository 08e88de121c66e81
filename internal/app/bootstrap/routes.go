// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"sync"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	auditlogfeature "github.com/mmu-rhsf/fellowhub/internal/app/features/auditlog"
	healthfeature "github.com/mmu-rhsf/fellowhub/internal/app/features/health"
	loginfeature "github.com/mmu-rhsf/fellowhub/internal/app/features/login"
	"github.com/mmu-rhsf/fellowhub/internal/app/features/registrationforms"
	"github.com/mmu-rhsf/fellowhub/internal/app/registration"
	"github.com/mmu-rhsf/fellowhub/internal/app/store/audit"
	memberstore "github.com/mmu-rhsf/fellowhub/internal/app/store/members"
	formstore "github.com/mmu-rhsf/fellowhub/internal/app/store/regforms"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/auditlog"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/auth"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/ratelimit"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/txn"
	"go.uber.org/zap"
)

var (
	bgMu     sync.Mutex
	bgCtx    context.Context
	bgCancel context.CancelFunc
)

// startBackground runs fn in a goroutine until Shutdown.
func startBackground(fn func(ctx context.Context)) {
	bgMu.Lock()
	defer bgMu.Unlock()
	if bgCtx == nil {
		bgCtx, bgCancel = context.WithCancel(context.Background())
	}
	go fn(bgCtx)
}

func stopBackground() {
	bgMu.Lock()
	defer bgMu.Unlock()
	if bgCancel != nil {
		bgCancel()
		bgCtx, bgCancel = nil, nil
	}
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Everything is mounted under /api:
//
//	/api/health        database ping
//	/api/auth          admin login and profile
//	/api/registration  form management, public form view and submission
//	/api/audit         admin audit log
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	tokens := auth.NewTokenManager(appCfg.JWTSecret, appCfg.JWTTTL)
	authn := auth.NewAuthenticator(tokens, logger)

	auditStore := audit.New(db)
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:         appCfg.AuditLogAuth,
		Admin:        appCfg.AuditLogAdmin,
		Registration: appCfg.AuditLogRegistration,
	})

	svc := registration.New(
		formstore.New(db),
		memberstore.New(db),
		txn.New(deps.MongoClient, logger),
		registration.Config{
			Defaults: registration.Defaults{
				Title:          appCfg.DefaultFormTitle,
				Description:    appCfg.DefaultFormDescription,
				MaxSubmissions: appCfg.DefaultMaxSubmissions,
				ExpiryDays:     appCfg.DefaultExpiryDays,
			},
			PublicBaseURL: appCfg.PublicBaseURL,
		},
		logger,
	)

	proxies, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	submitLimit := ratelimit.New(appCfg.SubmitRateLimit, appCfg.SubmitRateWindow)
	loginLimit := ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	startBackground(submitLimit.Run)
	startBackground(loginLimit.Run)

	r := chi.NewRouter()
	r.Use(ratelimit.TrustProxies(proxies))

	r.Route("/api", func(api chi.Router) {
		// Health check endpoint for load balancers and orchestrators
		healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
		api.Mount("/health", healthfeature.Routes(healthHandler))

		// Authentication
		loginHandler := loginfeature.NewHandler(loginfeature.Admin{
			ID:           appCfg.AdminID,
			Username:     appCfg.AdminUsername,
			Email:        appCfg.AdminEmail,
			PasswordHash: appCfg.AdminPasswordHash,
		}, tokens, loginLimit, auditLog, logger)
		api.Mount("/auth", loginfeature.Routes(loginHandler, authn))

		// Registration forms
		regHandler := registrationforms.NewHandler(svc, auditLog, logger)
		api.Mount("/registration", registrationforms.Routes(regHandler, authn, submitLimit))

		// Audit log
		auditHandler := auditlogfeature.NewHandler(auditStore, logger)
		api.Mount("/audit", auditlogfeature.Routes(auditHandler, authn))
	})

	return r, nil
}
