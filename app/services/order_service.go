package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/pkg/event"
	"github.com/arthomesoni/arthome/pkg/logger"
	"github.com/arthomesoni/arthome/pkg/metrics"
)

// EventOrderCreated is fired after an order is persisted. Payload: OrderEvent.
const EventOrderCreated = "order.created"

// OrderEvent is the payload carried by EventOrderCreated.
type OrderEvent struct {
	OrderID       string  `json:"orderId"`
	Total         float64 `json:"total"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	ItemCount     int     `json:"itemCount"`
}

// OrderStore is the slice of the order repository the order and report
// services consume.
type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	All(ctx context.Context) ([]models.Order, error)
	ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	Since(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderService handles checkout and order administration.
type OrderService struct {
	orders OrderStore
}

func NewOrderService(orders OrderStore) *OrderService {
	return &OrderService{orders: orders}
}

// CheckoutRequest is the payload the storefront sends at checkout.
type CheckoutRequest struct {
	Items         []models.OrderItem
	Total         float64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
}

// Create persists the order snapshot with the initial status. Stock and seat
// counts are intentionally left untouched: inventory changes only through the
// catalog and booking flows.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID, req CheckoutRequest) (models.Order, error) {
	order := models.Order{
		Items:         req.Items,
		Total:         req.Total,
		Status:        models.StatusProcessing,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Address:       strings.TrimSpace(req.Address),
		UserID:        userID,
		Date:          time.Now(),
	}

	if err := s.orders.Create(ctx, &order); err != nil {
		return models.Order{}, err
	}

	metrics.OrdersCreated.Inc()
	logger.WithCtx(ctx).Info("order created",
		"order_id", order.ID.Hex(),
		"total", order.Total,
		"items", len(order.Items),
	)

	event.FireAsync(EventOrderCreated, OrderEvent{
		OrderID:       order.ID.Hex(),
		Total:         order.Total,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		ItemCount:     len(order.Items),
	})

	return order, nil
}

// All returns every order (admin screen).
func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	return s.orders.All(ctx)
}

// ByUser returns the caller's own orders.
func (s *OrderService) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ByUser(ctx, userID)
}

// Get returns one order, visible to its owner and to admins.
func (s *OrderService) Get(ctx context.Context, id, callerID primitive.ObjectID, callerRole string) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if callerRole != models.RoleAdmin && order.UserID != callerID {
		return models.Order{}, ErrForbidden
	}
	return order, nil
}

// SetStatus moves an order to a new status from the fixed enum.
func (s *OrderService) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	if !models.ValidStatus(status) {
		return models.Order{}, ErrBadStatus
	}
	return s.orders.SetStatus(ctx, id, status)
}

// Delete removes an order (admin only; the storefront never calls this).
func (s *OrderService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.orders.Delete(ctx, id)
}
