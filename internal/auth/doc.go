// Package auth provides session-based authentication for the JSON API.
//
// Accounts live in the users repository; this package owns password
// hashing, credential checks, server-side sessions (SQLite-backed) and the
// middleware that guards session-only routes.
//
// Configuration via environment:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//	AUTH_CSRF_ENABLED=true              # Double-submit CSRF protection
package auth
