// Package migrations bootstraps the MongoDB indexes the platform relies on:
// unique email and promo codes, one cart per user, and the query indexes the
// order and report paths use.
package migrations

import (
	"context"
	"fmt"

	"github.com/arthomesoni/arthome/pkg/database"
	"github.com/arthomesoni/arthome/pkg/logger"
)

// Run creates all indexes. Safe to run repeatedly.
func Run(ctx context.Context) error {
	if err := database.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	logger.Info("migrations: indexes ensured")
	return nil
}
