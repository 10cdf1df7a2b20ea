// Package repositories implements MongoDB data access for the platform.
// Write paths that race (seat booking, promo use) are single conditional
// update commands so concurrent requests can never oversell.
package repositories

import "errors"

// Sentinel errors the services translate into HTTP statuses.
var (
	ErrNotFound          = errors.New("repositories: not found")
	ErrDuplicate         = errors.New("repositories: duplicate key")
	ErrNoSpots           = errors.New("repositories: no available spots")
	ErrAlreadyRegistered = errors.New("repositories: user already registered")
	ErrPromoExhausted    = errors.New("repositories: promo code exhausted")
)
