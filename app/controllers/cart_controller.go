package controllers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/pkg/bind"
	"github.com/arthomesoni/arthome/pkg/response"
)

// CartController serves the caller's cart. Every endpoint requires auth; the
// cart document is created lazily on first access. Responses carry the items
// array, matching what the storefront renders.
type CartController struct {
	service *services.CartService
}

func NewCartController(service *services.CartService) *CartController {
	return &CartController{service: service}
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	cart, err := c.service.Get(r.Context(), userID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, cart.Items)
}

type addItemRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	ItemType  string  `json:"itemType" validate:"required"`
	Title     string  `json:"title" validate:"required"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
	Image     string  `json:"image"`
}

func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	var body addItemRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	productID, err := primitive.ObjectIDFromHex(body.ProductID)
	if err != nil {
		response.Message(w, http.StatusBadRequest, "Некорректный идентификатор товара")
		return
	}

	cart, err := c.service.Add(r.Context(), userID, services.AddRequest{
		ProductID: productID,
		ItemType:  body.ItemType,
		Title:     body.Title,
		Price:     body.Price,
		Quantity:  body.Quantity,
		Image:     body.Image,
	})
	switch {
	case errors.Is(err, services.ErrBadItemType):
		response.Message(w, http.StatusBadRequest, "Некорректный тип товара")
	case errors.Is(err, services.ErrBadQuantity):
		response.Message(w, http.StatusBadRequest, "Количество должно быть больше 0")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusCreated, cart.Items)
	}
}

type updateQuantityRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"required"`
}

func (c *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	var body updateQuantityRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	itemID, err := primitive.ObjectIDFromHex(body.ItemID)
	if err != nil {
		response.NotFound(w, "Товар не найден в корзине")
		return
	}

	cart, err := c.service.UpdateQuantity(r.Context(), userID, itemID, body.Quantity)
	switch {
	case errors.Is(err, services.ErrBadQuantity):
		response.Message(w, http.StatusBadRequest, "Количество должно быть больше 0")
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Товар не найден в корзине")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, cart.Items)
	}
}

func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	itemID, ok := pathID(r, "itemId")
	if !ok {
		response.NotFound(w, "Товар не найден в корзине")
		return
	}

	cart, err := c.service.Remove(r.Context(), userID, itemID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Товар не найден в корзине")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, cart.Items)
	}
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	if err := c.service.Clear(r.Context(), userID); err != nil {
		serverError(w, r, err)
		return
	}
	response.Message(w, http.StatusOK, "Корзина очищена")
}
