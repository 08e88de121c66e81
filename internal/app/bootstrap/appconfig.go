// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (FELLOWHUB_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings (ports, TLS, logging, CORS).
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Admin tokens
	JWTSecret string // HS256 signing key (required)
	JWTTTL    time.Duration

	// The single administrator account
	AdminID           string
	AdminUsername     string
	AdminPasswordHash string // bcrypt; empty disables login
	AdminEmail        string

	// Base URL for shareable form links (e.g., "https://fellowship.example.org")
	PublicBaseURL string

	// Defaults for forms created without explicit values
	DefaultFormTitle       string
	DefaultFormDescription string
	DefaultMaxSubmissions  int
	DefaultExpiryDays      int

	// Per-IP rate limits
	SubmitRateLimit  int
	SubmitRateWindow time.Duration
	LoginRateLimit   int
	LoginRateWindow  time.Duration

	// Proxies allowed to set X-Forwarded-For / X-Real-IP ("10.0.0.0/8,127.0.0.1")
	TrustedProxies string

	// Audit logging: "all", "db", "log" or "off" per category
	AuditLogAuth         string
	AuditLogAdmin        string
	AuditLogRegistration string
}
