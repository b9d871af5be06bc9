// Package ciutil provides environment detection and environment variable lookup
// used by tests that talk to real backing services.
//
// Integration tests for the postgres and s3 board stores read their connection
// settings through this package, so the variable names live in one place and any
// values that end up in logs are redacted first.
package ciutil
