package controllers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/pkg/bind"
	"github.com/arthomesoni/arthome/pkg/middleware"
	"github.com/arthomesoni/arthome/pkg/response"
)

// OrderController serves checkout and order administration.
type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

type orderItemRequest struct {
	ProductID string  `json:"productId"`
	ItemType  string  `json:"itemType"`
	Title     string  `json:"title" validate:"required"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
	Image     string  `json:"image"`
}

type checkoutRequest struct {
	Items         []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	Total         float64            `json:"total" validate:"required,gt=0"`
	CustomerName  string             `json:"customerName" validate:"required"`
	CustomerEmail string             `json:"customerEmail" validate:"required,email"`
	CustomerPhone string             `json:"customerPhone"`
	Address       string             `json:"address"`
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	var body checkoutRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	items := make([]models.OrderItem, 0, len(body.Items))
	for _, it := range body.Items {
		item := models.OrderItem{
			ItemType: it.ItemType,
			Title:    it.Title,
			Price:    it.Price,
			Quantity: it.Quantity,
			Image:    it.Image,
		}
		// product references may be absent for legacy cart snapshots
		if pid, err := primitive.ObjectIDFromHex(it.ProductID); err == nil {
			item.ProductID = pid
		}
		items = append(items, item)
	}

	order, err := c.service.Create(r.Context(), userID, services.CheckoutRequest{
		Items:         items,
		Total:         body.Total,
		CustomerName:  body.CustomerName,
		CustomerEmail: body.CustomerEmail,
		CustomerPhone: body.CustomerPhone,
		Address:       body.Address,
	})
	if err != nil {
		serverError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, order)
}

// List returns every order. Admin only.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	orders, err := c.service.All(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, orders)
}

// Mine returns the caller's orders.
func (c *OrderController) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	orders, err := c.service.ByUser(r.Context(), userID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, orders)
}

// Get returns one order, visible to its owner and admins.
func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Заказ не найден")
		return
	}
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	order, err := c.service.Get(r.Context(), id, userID, middleware.RoleFromCtx(r.Context()))
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Заказ не найден")
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w, "Доступ запрещен")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, order)
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus moves an order through the status enum. Admin only.
func (c *OrderController) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Заказ не найден")
		return
	}

	var body statusRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.service.SetStatus(r.Context(), id, body.Status)
	switch {
	case errors.Is(err, services.ErrBadStatus):
		response.Message(w, http.StatusBadRequest, "Недопустимый статус заказа")
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Заказ не найден")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, order)
	}
}

// Delete removes an order. Admin only.
func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Заказ не найден")
		return
	}

	err := c.service.Delete(r.Context(), id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Заказ не найден")
	case err != nil:
		serverError(w, r, err)
	default:
		response.Message(w, http.StatusOK, "Заказ удален")
	}
}
