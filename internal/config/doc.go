// Package config loads the backoffice configuration.
//
// # Resolution
//
// Values are layered with koanf, later sources winning:
//
//  1. Built-in defaults (Default)
//  2. The TOML file, ~/.config/backoffice/config.toml unless a path is given
//  3. BACKOFFICE_* environment variables
//
// A missing file is not an error. Empty strings in the file fall back to the
// defaults, and paths starting with ~ are expanded.
//
// # File Format
//
//	[api]
//	base_url = "http://127.0.0.1:8080"
//	timeout = "10s"
//	user_agent = "backoffice/0.1"
//
//	[breaker]
//	enabled = true
//	max_failures = 5
//	open_timeout = "30s"
//
//	[refresh]
//	interval = "30s"   # "0s" disables background refresh
//
//	[log]
//	level = "info"
//	format = "json"
//	file = "~/.local/state/backoffice/backoffice.log"
//
//	[metrics]
//	addr = ""          # e.g. ":9090"
//
//	[photos]
//	warn_bytes = 2097152
//
//	[devserver]
//	addr = "127.0.0.1:8080"
//	admin_username = "admin"
//	admin_password = ""
//	admin_email = "admin@example.com"
//
// # Environment
//
// Only the variables in the mapping table are read: BACKOFFICE_API_URL,
// BACKOFFICE_API_TIMEOUT, BACKOFFICE_USER_AGENT, BACKOFFICE_BREAKER_ENABLED,
// BACKOFFICE_BREAKER_MAX_FAILURES, BACKOFFICE_BREAKER_OPEN_TIMEOUT,
// BACKOFFICE_REFRESH_INTERVAL, BACKOFFICE_LOG_LEVEL, BACKOFFICE_LOG_FORMAT,
// BACKOFFICE_LOG_FILE, BACKOFFICE_METRICS_ADDR, BACKOFFICE_PHOTO_WARN_BYTES,
// BACKOFFICE_DEVSERVER_ADDR, BACKOFFICE_ADMIN_USERNAME,
// BACKOFFICE_ADMIN_PASSWORD and BACKOFFICE_ADMIN_EMAIL.
//
// # Errors
//
// Load fails on unreadable files, TOML syntax errors ("parse config ...")
// and values rejected by validation ("invalid config: ...").
package config
