// Package handler is the first layer after the command router.
//
// Every command runs through one pipeline: request binding and validation,
// a New Relic transaction and a run-scoped logger, the call into the
// service layer, and the JSON envelope written to stdout or exported to a
// file.
package handler
