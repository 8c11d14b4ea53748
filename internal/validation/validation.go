// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields or length limits) defined in struct tags,
// collects rules that tags cannot express as CustomValidationErrors,
// and converts both into field-level errors the client can understand.
package validation
