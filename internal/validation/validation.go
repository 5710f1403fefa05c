// Package validation checks report parameters before any computation runs.
//
// It uses the `validator` library to enforce rules defined in struct tags
// and extracts the failures into errs field errors the CLI can print back.
package validation
