// Package arg splits raw command input into flag-aware tokens and resolves those tokens against a
// flag schema.
//
// The package knows nothing about commands. Callers hand it the argument body of a single command
// together with the effective flag schema for that command, and get back the recognized flag
// values, the tokens it did not consume, and any validation violations. Violations are reported,
// never returned as errors, so a caller can decide how strict to be.
package arg
