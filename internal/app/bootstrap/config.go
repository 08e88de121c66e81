// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/mmu-rhsf/fellowhub/internal/app/registration"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/auditlog"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/ratelimit"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// appConfigKeys defines the configuration keys for FellowHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: FELLOWHUB_MONGO_URI, FELLOWHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "fellowhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Admin tokens
	{Name: "jwt_secret", Default: "", Desc: "HS256 signing key for admin tokens (required)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Admin token lifetime (e.g., 24h, 30m)"},

	// Administrator account
	{Name: "admin_id", Default: "admin-user-id", Desc: "Subject recorded as the owner of forms the admin creates"},
	{Name: "admin_username", Default: "admin", Desc: "Admin login username"},
	{Name: "admin_password_hash", Default: "", Desc: "bcrypt hash of the admin password (blank disables login)"},
	{Name: "admin_email", Default: "admin@example.org", Desc: "Admin email shown in the profile"},

	// Shareable links
	{Name: "public_base_url", Default: "http://localhost:3000", Desc: "Base URL that prefixes shareable form links"},

	// Form defaults
	{Name: "default_form_title", Default: registration.DefaultSettings().Title, Desc: "Title for forms created without one"},
	{Name: "default_form_description", Default: registration.DefaultSettings().Description, Desc: "Description for forms created without one"},
	{Name: "default_max_submissions", Default: registration.DefaultSettings().MaxSubmissions, Desc: "Capacity for forms created without one"},
	{Name: "default_expiry_days", Default: registration.DefaultSettings().ExpiryDays, Desc: "Lifetime in days for forms created without one"},

	// Rate limits
	{Name: "submit_rate_limit", Default: 20, Desc: "Public submissions allowed per IP per window (0 disables)"},
	{Name: "submit_rate_window", Default: "1m", Desc: "Public submission rate limit window"},
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per IP per window (0 disables)"},
	{Name: "login_rate_window", Default: "15m", Desc: "Login rate limit window"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated proxy IPs/CIDRs whose X-Forwarded-For is honored (blank trusts none)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_registration", Default: "all", Desc: "Registration event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, FELLOWHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
//
// TIMEOUT_* overrides are applied here so they are in effect before the
// database connection is opened.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FELLOWHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 24*time.Hour),

		AdminID:           appValues.String("admin_id"),
		AdminUsername:     appValues.String("admin_username"),
		AdminPasswordHash: appValues.String("admin_password_hash"),
		AdminEmail:        appValues.String("admin_email"),

		PublicBaseURL: appValues.String("public_base_url"),

		DefaultFormTitle:       appValues.String("default_form_title"),
		DefaultFormDescription: appValues.String("default_form_description"),
		DefaultMaxSubmissions:  appValues.Int("default_max_submissions"),
		DefaultExpiryDays:      appValues.Int("default_expiry_days"),

		SubmitRateLimit:  appValues.Int("submit_rate_limit"),
		SubmitRateWindow: appValues.Duration("submit_rate_window", time.Minute),
		LoginRateLimit:   appValues.Int("login_rate_limit"),
		LoginRateWindow:  appValues.Duration("login_rate_window", 15*time.Minute),
		TrustedProxies:   appValues.String("trusted_proxies"),

		AuditLogAuth:         appValues.String("audit_log_auth"),
		AuditLogAdmin:        appValues.String("audit_log_admin"),
		AuditLogRegistration: appValues.String("audit_log_registration"),
	}

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n), zap.Any("timeouts", timeouts.Current()))
	}

	return coreCfg, appCfg, nil
}

var auditSettings = map[string]bool{
	"":           true,
	auditlog.All: true,
	auditlog.DB:  true,
	auditlog.Log: true,
	auditlog.Off: true,
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI format is checked here to catch configuration errors
// before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.JWTSecret == "" {
		return errors.New("jwt_secret must be set")
	}
	if appCfg.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive, got %s", appCfg.JWTTTL)
	}

	if n := appCfg.DefaultMaxSubmissions; n <= 0 || n > registration.MaxFormSubmissions {
		return fmt.Errorf("default_max_submissions must be between 1 and %d, got %d", registration.MaxFormSubmissions, n)
	}
	if n := appCfg.DefaultExpiryDays; n <= 0 || n > registration.MaxFormExpiryDays {
		return fmt.Errorf("default_expiry_days must be between 1 and %d, got %d", registration.MaxFormExpiryDays, n)
	}

	if _, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted_proxies: %w", err)
	}

	if appCfg.AdminPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(appCfg.AdminPasswordHash)); err != nil {
			return fmt.Errorf("admin_password_hash is not a bcrypt hash: %w", err)
		}
	}

	for key, v := range map[string]string{
		"audit_log_auth":         appCfg.AuditLogAuth,
		"audit_log_admin":        appCfg.AuditLogAdmin,
		"audit_log_registration": appCfg.AuditLogRegistration,
	} {
		if !auditSettings[v] {
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}

	return nil
}
