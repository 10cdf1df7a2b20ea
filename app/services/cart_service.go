package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
)

// CartStore is the slice of the cart repository the cart service consumes.
type CartStore interface {
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
	Save(ctx context.Context, userID primitive.ObjectID, items []models.CartItem) (models.Cart, error)
	UpdateQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) (models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) (models.Cart, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// CartService manages each user's single cart document.
type CartService struct {
	carts CartStore
}

func NewCartService(carts CartStore) *CartService {
	return &CartService{carts: carts}
}

// Get returns the user's cart, creating it on first access.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	return s.carts.GetOrCreate(ctx, userID)
}

// AddRequest describes the line being added to the cart.
type AddRequest struct {
	ProductID primitive.ObjectID
	ItemType  string
	Title     string
	Price     float64
	Quantity  int
	Image     string
}

// Add merges the quantity into an existing (productId, itemType) line, or
// appends a new line with a fresh line ID.
func (s *CartService) Add(ctx context.Context, userID primitive.ObjectID, req AddRequest) (models.Cart, error) {
	if !models.ValidItemType(req.ItemType) {
		return models.Cart{}, ErrBadItemType
	}
	if req.Quantity <= 0 {
		return models.Cart{}, ErrBadQuantity
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return models.Cart{}, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == req.ProductID && cart.Items[i].ItemType == req.ItemType {
			cart.Items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ID:        primitive.NewObjectID(),
			ProductID: req.ProductID,
			ItemType:  req.ItemType,
			Title:     req.Title,
			Price:     req.Price,
			Quantity:  req.Quantity,
			Image:     req.Image,
		})
	}

	return s.carts.Save(ctx, userID, cart.Items)
}

// UpdateQuantity sets the quantity of one line. Non-positive quantities are
// rejected; the client removes lines through Remove instead.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) (models.Cart, error) {
	if quantity <= 0 {
		return models.Cart{}, ErrBadQuantity
	}
	return s.carts.UpdateQuantity(ctx, userID, itemID, quantity)
}

// Remove deletes one line from the cart.
func (s *CartService) Remove(ctx context.Context, userID, itemID primitive.ObjectID) (models.Cart, error) {
	return s.carts.RemoveItem(ctx, userID, itemID)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	return s.carts.Clear(ctx, userID)
}
