// Package middleware contains the echo middlewares shared by every route.
//
// Each concern lives on its own struct built from the server container:
// request ids, request-scoped logging, New Relic tracing, rate limiting,
// per-request repositories, and the global error handler that turns every
// returned error into the errs.HTTPError JSON body.
package middleware
