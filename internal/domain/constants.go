package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
)

// Retry constants
const (
	// DefaultMaxRetries is how many times a retryable failure is retried
	// after the first attempt.
	DefaultMaxRetries = 3
	// DefaultInitialDelay seeds the exponential backoff schedule.
	DefaultInitialDelay = 2000 * time.Millisecond
)

// Session constants
const (
	// DefaultContextWindow is the bounded number of interaction pairs kept
	// to prime future prompts.
	DefaultContextWindow = 15
	// DefaultFlushInterval is how often a dirty session snapshot is written
	// through to durable storage.
	DefaultFlushInterval = 300 * time.Millisecond
)

// Archive constants
const (
	// DefaultArchiveLimit is the default number of archive records to display
	DefaultArchiveLimit = 20
	// DefaultArchiveSearchLimit is the default number of search results to return
	DefaultArchiveSearchLimit = 50
)
