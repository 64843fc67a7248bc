// Package service contains the business rules.
//
// It sits between the handlers and the repositories: handlers pass in
// validated input, services enforce ownership and uniqueness rules and
// translate domain failures into *errs.HTTPError values.
package service
