package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID       = "user_id"
	ContextKeyCapabilities = "capabilities"

	HeaderRequestID = "X-Request-ID"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Task list scopes accepted by the API
const (
	ScopeAll  = "all"
	ScopeMine = "mine"
)

// ShutdownTimeout bounds graceful server shutdown
const ShutdownTimeout = 10 * time.Second
