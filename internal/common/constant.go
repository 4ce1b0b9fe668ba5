// Package common contains shared constants and sentinel errors used across
// authdir components.
package common

// RequestIDHeaderName is the gRPC metadata key carrying a caller supplied
// request id. The server generates one when it is absent.
const RequestIDHeaderName = "x-request-id"

// Roles accepted at registration.
const (
	RoleTeamManager = "team_manager"
	RoleInsurance   = "insurance"
)

// CacheKeyPrefix prefixes every credential record key in the cache.
const CacheKeyPrefix = "user:"
