package common

// ServiceTokenHeaderName carries the shared service secret on calls to the
// notification service.
const ServiceTokenHeaderName = "X-Service-Token"

// AuthorizationHeaderName carries the caller's bearer token.
const AuthorizationHeaderName = "Authorization"

// MaxListedTransactions caps a single account history listing.
const MaxListedTransactions = 10000
