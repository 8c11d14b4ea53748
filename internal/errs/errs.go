// Package errs defines the error types returned to API clients.
//
// Every failure that leaves the HTTP layer is an *HTTPError, so clients
// always receive the same JSON shape: a machine code, a human message under
// the "error" key, the status, and optional field-level errors.
package errs
