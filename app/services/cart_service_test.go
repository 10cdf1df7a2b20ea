package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
)

func TestCartGet_CreatesEmptyCartOnFirstAccess(t *testing.T) {
	svc := NewCartService(newFakeCartStore())
	userID := primitive.NewObjectID()

	cart, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Items)
}

func TestCartAdd_MergesSameProductAndType(t *testing.T) {
	svc := NewCartService(newFakeCartStore())
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	req := AddRequest{
		ProductID: productID,
		ItemType:  models.ItemTypePainting,
		Title:     "Утро в лесу",
		Price:     15000,
		Quantity:  1,
	}

	cart, err := svc.Add(context.Background(), userID, req)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	req.Quantity = 2
	cart, err = svc.Add(context.Background(), userID, req)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.InDelta(t, 45000.0, cart.Total(), 1e-9)
}

func TestCartAdd_SameProductDifferentTypeStaysSeparate(t *testing.T) {
	svc := NewCartService(newFakeCartStore())
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	_, err := svc.Add(context.Background(), userID, AddRequest{
		ProductID: productID, ItemType: models.ItemTypePainting,
		Title: "Картина", Price: 5000, Quantity: 1,
	})
	require.NoError(t, err)

	cart, err := svc.Add(context.Background(), userID, AddRequest{
		ProductID: productID, ItemType: models.ItemTypeWorkshop,
		Title: "Мастер-класс", Price: 2500, Quantity: 1,
	})
	require.NoError(t, err)

	assert.Len(t, cart.Items, 2)
	assert.InDelta(t, 7500.0, cart.Total(), 1e-9)
}

func TestCartAdd_Validation(t *testing.T) {
	svc := NewCartService(newFakeCartStore())
	userID := primitive.NewObjectID()

	_, err := svc.Add(context.Background(), userID, AddRequest{
		ProductID: primitive.NewObjectID(), ItemType: "Sculpture",
		Title: "x", Price: 1, Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrBadItemType)

	_, err = svc.Add(context.Background(), userID, AddRequest{
		ProductID: primitive.NewObjectID(), ItemType: models.ItemTypePainting,
		Title: "x", Price: 1, Quantity: 0,
	})
	assert.ErrorIs(t, err, ErrBadQuantity)
}

func TestCartUpdateQuantity(t *testing.T) {
	svc := NewCartService(newFakeCartStore())
	userID := primitive.NewObjectID()

	cart, err := svc.Add(context.Background(), userID, AddRequest{
		ProductID: primitive.NewObjectID(), ItemType: models.ItemTypePainting,
		Title: "Картина", Price: 1000, Quantity: 1,
	})
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateQuantity(context.Background(), userID, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	_, err = svc.UpdateQuantity(context.Background(), userID, itemID, 0)
	assert.ErrorIs(t, err, ErrBadQuantity)

	_, err = svc.UpdateQuantity(context.Background(), userID, primitive.NewObjectID(), 2)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCartRemoveAndClear(t *testing.T) {
	svc := NewCartService(newFakeCartStore())
	userID := primitive.NewObjectID()

	cart, err := svc.Add(context.Background(), userID, AddRequest{
		ProductID: primitive.NewObjectID(), ItemType: models.ItemTypePainting,
		Title: "Первая", Price: 1000, Quantity: 1,
	})
	require.NoError(t, err)
	first := cart.Items[0].ID

	cart, err = svc.Add(context.Background(), userID, AddRequest{
		ProductID: primitive.NewObjectID(), ItemType: models.ItemTypePainting,
		Title: "Вторая", Price: 2000, Quantity: 1,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	cart, err = svc.Remove(context.Background(), userID, first)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Вторая", cart.Items[0].Title)

	require.NoError(t, svc.Clear(context.Background(), userID))
	cart, err = svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
