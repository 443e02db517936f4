package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds (86400 seconds = 24 hours)
	AccessTokenTTLSeconds = 86400

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Grievance and appointment constants
const (
	// GrievanceIDPrefix is the prefix of sequential grievance identifiers
	GrievanceIDPrefix = "GRV"

	// AppointmentIDPrefix is the prefix of sequential appointment identifiers
	AppointmentIDPrefix = "APT"

	// DashboardStatsCacheTTL bounds staleness of cached dashboard counters
	DashboardStatsCacheTTL = 2 * time.Minute

	// AppointmentSlotDuration is the default appointment slot length
	AppointmentSlotDuration = 30 * time.Minute
)
