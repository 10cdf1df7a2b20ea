package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/pkg/logger"
	"github.com/arthomesoni/arthome/pkg/metrics"
)

const defaultMaxUses = 100

// PromoStore is the slice of the promo repository the promo service consumes.
type PromoStore interface {
	All(ctx context.Context) ([]models.PromoCode, error)
	FindByCode(ctx context.Context, code string) (models.PromoCode, error)
	Create(ctx context.Context, p *models.PromoCode) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.PromoCode, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Use(ctx context.Context, code string) (models.PromoCode, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// PromoService manages discount codes and their bounded consumption.
type PromoService struct {
	promos PromoStore
}

func NewPromoService(promos PromoStore) *PromoService {
	return &PromoService{promos: promos}
}

// normalizeCode uppercases and trims a code so lookups are case-insensitive.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// List returns all promo codes (admin screen).
func (s *PromoService) List(ctx context.Context) ([]models.PromoCode, error) {
	return s.promos.All(ctx)
}

// CreateRequest describes a new promo code.
type CreateRequest struct {
	Code            string
	DiscountPercent int
	MaxUses         int
	ExpiresAt       *time.Time
}

// Create stores a new code with defaults applied.
func (s *PromoService) Create(ctx context.Context, req CreateRequest) (models.PromoCode, error) {
	maxUses := req.MaxUses
	if maxUses <= 0 {
		maxUses = defaultMaxUses
	}

	promo := models.PromoCode{
		Code:            normalizeCode(req.Code),
		DiscountPercent: req.DiscountPercent,
		MaxUses:         maxUses,
		UsedCount:       0,
		Active:          true,
		ExpiresAt:       req.ExpiresAt,
	}
	if err := s.promos.Create(ctx, &promo); err != nil {
		return models.PromoCode{}, err
	}
	return promo, nil
}

// Verify checks a code without consuming a use. Inactive or expired codes
// read as not found; exhausted codes surface as exhausted.
func (s *PromoService) Verify(ctx context.Context, code string) (models.PromoCode, error) {
	promo, err := s.promos.FindByCode(ctx, normalizeCode(code))
	if err != nil {
		return models.PromoCode{}, err
	}
	if !promo.Active || promo.Expired(time.Now()) {
		return models.PromoCode{}, repositories.ErrNotFound
	}
	if promo.UsedCount >= promo.MaxUses {
		return models.PromoCode{}, repositories.ErrPromoExhausted
	}
	return promo, nil
}

// Use consumes one use of the code. The repository's conditional write keeps
// usedCount from ever passing maxUses.
func (s *PromoService) Use(ctx context.Context, code string) (models.PromoCode, error) {
	normalized := normalizeCode(code)

	promo, err := s.promos.FindByCode(ctx, normalized)
	if err == nil && promo.Expired(time.Now()) {
		return models.PromoCode{}, repositories.ErrNotFound
	}

	promo, err = s.promos.Use(ctx, normalized)
	if err != nil {
		return models.PromoCode{}, err
	}

	metrics.PromoUses.Inc()
	logger.WithCtx(ctx).Info("promo code used",
		"code", promo.Code,
		"used", promo.UsedCount,
		"max", promo.MaxUses,
	)
	return promo, nil
}

// Update applies admin edits to a code.
func (s *PromoService) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.PromoCode, error) {
	if code, ok := fields["code"].(string); ok {
		fields["code"] = normalizeCode(code)
	}
	return s.promos.Update(ctx, id, fields)
}

// Delete removes a code.
func (s *PromoService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.promos.Delete(ctx, id)
}

// PruneExpired deactivates codes whose expiry has passed. Run hourly by the
// scheduler and on demand via the promo:prune CLI verb.
func (s *PromoService) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.promos.DeactivateExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("promo codes deactivated", "count", n)
	}
	return n, nil
}
