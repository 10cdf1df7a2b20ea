package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
)

func checkout(t *testing.T, svc *OrderService, userID primitive.ObjectID) models.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), userID, CheckoutRequest{
		Items: []models.OrderItem{
			{Title: "Картина", Price: 5000, Quantity: 2},
		},
		Total:         10000,
		CustomerName:  "  Анна  ",
		CustomerEmail: " Anna@Example.COM ",
		Address:       "Москва",
	})
	require.NoError(t, err)
	return order
}

func TestOrderCreate_DefaultsAndNormalization(t *testing.T) {
	store := newFakeOrderStore()
	svc := NewOrderService(store)

	order := checkout(t, svc, primitive.NewObjectID())

	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.Equal(t, "Анна", order.CustomerName)
	assert.Equal(t, "anna@example.com", order.CustomerEmail)
	assert.False(t, order.Date.IsZero())
	assert.False(t, order.ID.IsZero())
}

func TestOrderCreate_DoesNotTouchInventory(t *testing.T) {
	workshops := newFakeWorkshopStore()
	w := workshops.add(models.Workshop{Title: "Мастер-класс", AvailableSpots: 5})

	svc := NewOrderService(newFakeOrderStore())
	_, err := svc.Create(context.Background(), primitive.NewObjectID(), CheckoutRequest{
		Items: []models.OrderItem{
			{ProductID: w.ID, ItemType: models.ItemTypeWorkshop, Title: w.Title, Price: 2500, Quantity: 1},
		},
		Total:         2500,
		CustomerName:  "Гость",
		CustomerEmail: "guest@example.com",
	})
	require.NoError(t, err)

	after, err := workshops.FindByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.AvailableSpots)
}

func TestOrderGet_OwnerAndAdminOnly(t *testing.T) {
	store := newFakeOrderStore()
	svc := NewOrderService(store)

	owner := primitive.NewObjectID()
	order := checkout(t, svc, owner)

	_, err := svc.Get(context.Background(), order.ID, owner, models.RoleUser)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), order.ID, primitive.NewObjectID(), models.RoleAdmin)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), order.ID, primitive.NewObjectID(), models.RoleUser)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestOrderSetStatus(t *testing.T) {
	store := newFakeOrderStore()
	svc := NewOrderService(store)

	order := checkout(t, svc, primitive.NewObjectID())

	updated, err := svc.SetStatus(context.Background(), order.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	_, err = svc.SetStatus(context.Background(), order.ID, "Shipped")
	assert.ErrorIs(t, err, ErrBadStatus)
}

func TestOrderByUser(t *testing.T) {
	store := newFakeOrderStore()
	svc := NewOrderService(store)

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	checkout(t, svc, alice)
	checkout(t, svc, alice)
	checkout(t, svc, bob)

	mine, err := svc.ByUser(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
