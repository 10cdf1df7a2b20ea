package controllers

import (
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/pkg/bind"
	"github.com/arthomesoni/arthome/pkg/response"
)

// PromoController serves promo code administration plus the verify/use
// endpoints the checkout flow calls.
type PromoController struct {
	service *services.PromoService
}

func NewPromoController(service *services.PromoService) *PromoController {
	return &PromoController{service: service}
}

// List returns every code. Admin only.
func (c *PromoController) List(w http.ResponseWriter, r *http.Request) {
	promos, err := c.service.List(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, promos)
}

type createPromoRequest struct {
	Code            string     `json:"code" validate:"required,min=2"`
	DiscountPercent int        `json:"discountPercent" validate:"required,gte=1,lte=100"`
	MaxUses         int        `json:"maxUses" validate:"omitempty,gte=1"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

// Create stores a new code. Admin only.
func (c *PromoController) Create(w http.ResponseWriter, r *http.Request) {
	var body createPromoRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	promo, err := c.service.Create(r.Context(), services.CreateRequest{
		Code:            body.Code,
		DiscountPercent: body.DiscountPercent,
		MaxUses:         body.MaxUses,
		ExpiresAt:       body.ExpiresAt,
	})
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		response.Message(w, http.StatusBadRequest, "Промокод с таким названием уже существует")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusCreated, promo)
	}
}

type codeRequest struct {
	Code string `json:"code" validate:"required"`
}

// Verify checks a code without consuming a use.
func (c *PromoController) Verify(w http.ResponseWriter, r *http.Request) {
	var body codeRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	promo, err := c.service.Verify(r.Context(), body.Code)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Промокод не найден или истек срок действия")
	case errors.Is(err, repositories.ErrPromoExhausted):
		response.Message(w, http.StatusBadRequest, "Промокод больше не действителен")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, map[string]interface{}{
			"code":            promo.Code,
			"discountPercent": promo.DiscountPercent,
		})
	}
}

// Use consumes one use of the code at order placement.
func (c *PromoController) Use(w http.ResponseWriter, r *http.Request) {
	var body codeRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	_, err := c.service.Use(r.Context(), body.Code)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Промокод не найден")
	case errors.Is(err, repositories.ErrPromoExhausted):
		response.Message(w, http.StatusBadRequest, "Промокод больше не действителен")
	case err != nil:
		serverError(w, r, err)
	default:
		response.Message(w, http.StatusOK, "Промокод применен успешно")
	}
}

type updatePromoRequest struct {
	DiscountPercent *int       `json:"discountPercent" validate:"omitempty,gte=1,lte=100"`
	MaxUses         *int       `json:"maxUses" validate:"omitempty,gte=1"`
	Active          *bool      `json:"active"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

// Update applies admin edits to a code.
func (c *PromoController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Промокод не найден")
		return
	}

	var body updatePromoRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	fields := bson.M{}
	if body.DiscountPercent != nil {
		fields["discountPercent"] = *body.DiscountPercent
	}
	if body.MaxUses != nil {
		fields["maxUses"] = *body.MaxUses
	}
	if body.Active != nil {
		fields["active"] = *body.Active
	}
	if body.ExpiresAt != nil {
		fields["expiresAt"] = *body.ExpiresAt
	}
	if len(fields) == 0 {
		response.Message(w, http.StatusBadRequest, "Нет данных для обновления")
		return
	}

	promo, err := c.service.Update(r.Context(), id, fields)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Промокод не найден")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, promo)
	}
}

// Delete removes a code. Admin only.
func (c *PromoController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Промокод не найден")
		return
	}

	err := c.service.Delete(r.Context(), id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Промокод не найден")
	case err != nil:
		serverError(w, r, err)
	default:
		response.Message(w, http.StatusOK, "Промокод удален")
	}
}
