// Package handler is the first layer after the router.
//
// It turns a dispatched request (entity + remaining path segments + HTTP
// method) into a repository call, binds request bodies through the
// validation package, and writes the response envelope. Errors are
// returned, never written, so the global error handler owns every error body.
package handler
