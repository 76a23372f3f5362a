// Package common contains shared constants, sentinel errors and the error
// taxonomy used across client and server components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Everyone is the reserved identity a grant is stored under when it names no
// particular user.
const Everyone = "everyone"
