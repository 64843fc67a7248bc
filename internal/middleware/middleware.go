// Package middleware holds the global and route-level echo middleware:
// request ids, request-scoped loggers, New Relic tracing, session
// authentication, sign-in rate limiting and the global error handler.
package middleware
