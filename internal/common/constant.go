// Package common contains shared constants and sentinel errors used across
// SmartQ components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// session token on outbound requests.
const AccessTokenHeaderName = "access_token"

// RoleUser is the only role the service ever embeds into a session token.
const RoleUser = "USER"
