// Package lib groups modules that do not fit strictly into other layers.
//
// It contains report export helpers (utils), background report delivery
// (job, on Redis/asynq), and the Resend email client (email).
package lib
