// Package services holds the business logic between the HTTP controllers
// and the MongoDB repositories. Each service declares the narrow store
// interface it consumes; tests satisfy them with in-memory fakes.
package services

import "errors"

var (
	ErrEmailTaken         = errors.New("services: email already registered")
	ErrInvalidCredentials = errors.New("services: invalid email or password")
	ErrForbidden          = errors.New("services: operation not permitted")
	ErrBadRole            = errors.New("services: unknown role")
	ErrBadStatus          = errors.New("services: unknown order status")
	ErrBadQuantity        = errors.New("services: quantity must be positive")
	ErrBadItemType        = errors.New("services: unknown item type")
	ErrBadExportType      = errors.New("services: unknown export type")
)
