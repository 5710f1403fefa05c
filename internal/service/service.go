// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives validated
// requests from the handler, loads a fresh snapshot through the repository
// layer, and runs the report builders over it.
package service
