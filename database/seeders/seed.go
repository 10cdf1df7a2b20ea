// Package seeders fills a fresh database with the accounts and catalog the
// studio needs to start taking orders: an admin user, the ART10 welcome code,
// and a small sample catalog.
package seeders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/pkg/auth"
	"github.com/arthomesoni/arthome/pkg/logger"
)

// Run seeds everything. Existing records are left alone, so reseeding a live
// database is safe.
func Run(ctx context.Context) error {
	if err := seedAdmin(ctx); err != nil {
		return err
	}
	if err := seedPromo(ctx); err != nil {
		return err
	}
	if err := seedCatalog(ctx); err != nil {
		return err
	}
	logger.Info("seeders: done")
	return nil
}

func seedAdmin(ctx context.Context) error {
	users := repositories.NewUserRepository()

	email := "admin@arthomesoni.ru"
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("seeders: admin lookup: %w", err)
	}

	hash, err := auth.HashPassword("admin123")
	if err != nil {
		return fmt.Errorf("seeders: hash admin password: %w", err)
	}

	admin := models.User{
		Name:     "Администратор",
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := users.Create(ctx, &admin); err != nil && !errors.Is(err, repositories.ErrDuplicate) {
		return fmt.Errorf("seeders: create admin: %w", err)
	}
	logger.Info("seeders: admin user created", "email", email)
	return nil
}

func seedPromo(ctx context.Context) error {
	promos := repositories.NewPromoRepository()

	if _, err := promos.FindByCode(ctx, "ART10"); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("seeders: promo lookup: %w", err)
	}

	promo := models.PromoCode{
		Code:            "ART10",
		DiscountPercent: 10,
		MaxUses:         100,
		Active:          true,
	}
	if err := promos.Create(ctx, &promo); err != nil && !errors.Is(err, repositories.ErrDuplicate) {
		return fmt.Errorf("seeders: create promo: %w", err)
	}
	logger.Info("seeders: promo code created", "code", promo.Code)
	return nil
}

func seedCatalog(ctx context.Context) error {
	paintings := repositories.NewPaintingRepository()
	workshops := repositories.NewWorkshopRepository()

	existing, err := paintings.All(ctx)
	if err != nil {
		return fmt.Errorf("seeders: paintings lookup: %w", err)
	}
	if len(existing) == 0 {
		samples := []models.Painting{
			{Title: "Утро в сосновом лесу", Category: "Пейзаж", Price: 15000, InStock: true,
				Description: "Масло, холст, 60×80 см."},
			{Title: "Натюрморт с пионами", Category: "Натюрморт", Price: 8500, InStock: true,
				Description: "Акрил, холст, 40×50 см."},
			{Title: "Городские крыши", Category: "Городской пейзаж", Price: 12000, InStock: true,
				Description: "Масло, холст, 50×70 см."},
		}
		for i := range samples {
			if err := paintings.Create(ctx, &samples[i]); err != nil {
				return fmt.Errorf("seeders: create painting: %w", err)
			}
		}
		logger.Info("seeders: sample paintings created", "count", len(samples))
	}

	existingWs, err := workshops.All(ctx)
	if err != nil {
		return fmt.Errorf("seeders: workshops lookup: %w", err)
	}
	if len(existingWs) == 0 {
		nextMonth := time.Now().AddDate(0, 1, 0)
		samples := []models.Workshop{
			{Title: "Масляная живопись для начинающих", Date: nextMonth, Duration: "3 часа",
				Price: 2500, AvailableSpots: 10, Location: "Студия Art Home Soni",
				RegisteredParticipants: []models.Participant{}},
			{Title: "Акварельный скетчинг", Date: nextMonth.AddDate(0, 0, 7), Duration: "2 часа",
				Price: 1800, AvailableSpots: 12, Location: "Студия Art Home Soni",
				RegisteredParticipants: []models.Participant{}},
		}
		for i := range samples {
			if err := workshops.Create(ctx, &samples[i]); err != nil {
				return fmt.Errorf("seeders: create workshop: %w", err)
			}
		}
		logger.Info("seeders: sample workshops created", "count", len(samples))
	}

	return nil
}
