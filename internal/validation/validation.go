// Package validation binds request payloads and turns validator failures
// into field-level 400 responses.
package validation
