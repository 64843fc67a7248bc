// Package handler is the HTTP layer. Handlers bind and validate input,
// call services and shape JSON responses; they hold no business rules.
package handler
