package utils

import (
	"time"
)

// Token time constants
const (
	// AccessTokenTTL is the fixed validity window for issued session tokens (30 days)
	AccessTokenTTL = 30 * 24 * time.Hour

	// AccessTokenTTLSeconds is the token validity window in seconds
	AccessTokenTTLSeconds = 30 * 24 * 3600
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Pagination constants
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Cache key constants
const (
	// TailorDirectoryCacheKey is the prefix for cached tailor directory pages
	TailorDirectoryCacheKey = "tailors:directory"
)

// Currency constants
const (
	TomanCurrency = "TMN"
)
