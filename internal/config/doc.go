// Package config manages application configuration for the Hearth API.
//
// Configuration is read from environment variables into tagged structs with
// github.com/caarlos0/env and checked as a whole by Validate:
//
//	cfg, err := config.Load()
//	if err == nil {
//	    err = cfg.Validate()
//	}
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: RS256 key paths, issuer and token lifetime
//   - SearchConfig: candidate page size, result limits, default unit
//   - ChatConfig: snowflake node id, message length, SSE heartbeat
//   - AssetConfig: upload size limit
//   - RateLimitConfig: per-client token bucket
//   - LogConfig: slog level
//
// # Environment Variables
//
//	SERVER_PORT            - HTTP server port (default: 8080)
//	SERVER_ENV             - development, production or test
//	CORS_ALLOWED_ORIGINS   - comma separated origins
//	DB_HOST, DB_PORT       - SurrealDB address (default: localhost:8000)
//	DB_NAMESPACE           - namespace (default: hearth)
//	DB_KEEPALIVE_INTERVAL  - ping interval, 0 disables (default: 30s)
//	JWT_PRIVATE_KEY_PATH   - PEM private key used to sign tokens
//	SEARCH_MAX_LIMIT       - cap on search results (default: 500)
//	CHAT_NODE_ID           - snowflake node, unique per instance
//	LOG_LEVEL              - DEBUG, INFO, WARN or ERROR
//
// Tests use LoadFrom to parse a fixed map instead of the process environment.
package config
