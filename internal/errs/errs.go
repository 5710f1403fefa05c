// Package errs defines the error taxonomy shared by every layer.
//
// Its purpose is to give callers a small, stable set of error kinds
// (integrity, invalid parameter, not found, internal) that survive
// wrapping, carry a machine-friendly code and, for parameter problems,
// field-level details the CLI can print back to the user.
package errs
