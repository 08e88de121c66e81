// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after DB connections and schema setup are complete, but
// before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminPasswordHash == "" {
		logger.Warn("admin_password_hash is not set; admin login is disabled")
	}
	logger.Info("fellowhub starting",
		zap.String("public_base_url", appCfg.PublicBaseURL),
		zap.Int("default_max_submissions", appCfg.DefaultMaxSubmissions),
		zap.Int("default_expiry_days", appCfg.DefaultExpiryDays),
		zap.Int("submit_rate_limit", appCfg.SubmitRateLimit),
		zap.Duration("submit_rate_window", appCfg.SubmitRateWindow),
	)
	return nil
}
