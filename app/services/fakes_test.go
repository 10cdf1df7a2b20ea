package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
)

// In-memory fakes implementing the store interfaces. The booking and promo
// fakes reproduce the conditional-write semantics of the Mongo repositories
// under a mutex, so the concurrency properties are testable without a server.

// ─── users ────────────────────────────────────────────────────────────────────

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]models.User{}}
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, fields bson.M) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(fields) == 0 {
		// Mongo rejects an empty $set document.
		return models.User{}, errors.New("users: update profile: '$set' is empty")
	}
	u, ok := f.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	if v, ok := fields["name"].(string); ok {
		u.Name = v
	}
	if v, ok := fields["email"].(string); ok {
		u.Email = v
	}
	if v, ok := fields["phone"].(string); ok {
		u.Phone = v
	}
	if v, ok := fields["address"].(string); ok {
		u.Address = v
	}
	f.users[id] = u
	return u, nil
}

func (f *fakeUserStore) All(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserStore) SetRole(_ context.Context, id primitive.ObjectID, role string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	u.Role = role
	f.users[id] = u
	return u, nil
}

// ─── workshops ────────────────────────────────────────────────────────────────

type fakeWorkshopStore struct {
	mu        sync.Mutex
	workshops map[primitive.ObjectID]models.Workshop
}

func newFakeWorkshopStore() *fakeWorkshopStore {
	return &fakeWorkshopStore{workshops: map[primitive.ObjectID]models.Workshop{}}
}

func (f *fakeWorkshopStore) add(w models.Workshop) models.Workshop {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	f.workshops[w.ID] = w
	return w
}

func (f *fakeWorkshopStore) All(_ context.Context) ([]models.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Workshop, 0, len(f.workshops))
	for _, w := range f.workshops {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeWorkshopStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workshops[id]
	if !ok {
		return models.Workshop{}, repositories.ErrNotFound
	}
	return w, nil
}

func (f *fakeWorkshopStore) Create(_ context.Context, w *models.Workshop) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.ID = primitive.NewObjectID()
	w.CreatedAt = time.Now()
	f.workshops[w.ID] = *w
	return nil
}

func (f *fakeWorkshopStore) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (models.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workshops[id]
	if !ok {
		return models.Workshop{}, repositories.ErrNotFound
	}
	if v, ok := fields["title"].(string); ok {
		w.Title = v
	}
	if v, ok := fields["price"].(float64); ok {
		w.Price = v
	}
	if v, ok := fields["availableSpots"].(int); ok {
		w.AvailableSpots = v
	}
	if v, ok := fields["image"].(string); ok {
		w.Image = v
	}
	f.workshops[id] = w
	return w, nil
}

func (f *fakeWorkshopStore) Delete(_ context.Context, id primitive.ObjectID) (models.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workshops[id]
	if !ok {
		return models.Workshop{}, repositories.ErrNotFound
	}
	delete(f.workshops, id)
	return w, nil
}

// Book mirrors the conditional update: all three checks and the mutation
// happen under one lock, exactly like the single Mongo document write.
func (f *fakeWorkshopStore) Book(_ context.Context, id primitive.ObjectID, p models.Participant) (models.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w, ok := f.workshops[id]
	if !ok {
		return models.Workshop{}, repositories.ErrNotFound
	}
	for _, existing := range w.RegisteredParticipants {
		if existing.UserID == p.UserID {
			return models.Workshop{}, repositories.ErrAlreadyRegistered
		}
	}
	if w.AvailableSpots <= 0 {
		return models.Workshop{}, repositories.ErrNoSpots
	}

	w.RegisteredParticipants = append(w.RegisteredParticipants, p)
	w.AvailableSpots--
	f.workshops[id] = w
	return w, nil
}

// ─── orders ───────────────────────────────────────────────────────────────────

type fakeOrderStore struct {
	mu     sync.Mutex
	orders []models.Order
}

func newFakeOrderStore() *fakeOrderStore { return &fakeOrderStore{} }

func (f *fakeOrderStore) Create(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = primitive.NewObjectID()
	// newest first, matching the repository sort
	f.orders = append([]models.Order{*o}, f.orders...)
	return nil
}

func (f *fakeOrderStore) All(_ context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeOrderStore) ByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Order{}, repositories.ErrNotFound
}

func (f *fakeOrderStore) Since(_ context.Context, cutoff time.Time) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if cutoff.IsZero() || !o.Date.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) SetStatus(_ context.Context, id primitive.ObjectID, status string) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			return f.orders[i], nil
		}
	}
	return models.Order{}, repositories.ErrNotFound
}

func (f *fakeOrderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// ─── promo codes ──────────────────────────────────────────────────────────────

type fakePromoStore struct {
	mu     sync.Mutex
	promos map[string]models.PromoCode // keyed by code
}

func newFakePromoStore() *fakePromoStore {
	return &fakePromoStore{promos: map[string]models.PromoCode{}}
}

func (f *fakePromoStore) All(_ context.Context) ([]models.PromoCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PromoCode, 0, len(f.promos))
	for _, p := range f.promos {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePromoStore) FindByCode(_ context.Context, code string) (models.PromoCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.promos[code]
	if !ok {
		return models.PromoCode{}, repositories.ErrNotFound
	}
	return p, nil
}

func (f *fakePromoStore) Create(_ context.Context, p *models.PromoCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.promos[p.Code]; ok {
		return repositories.ErrDuplicate
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	f.promos[p.Code] = *p
	return nil
}

func (f *fakePromoStore) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (models.PromoCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for code, p := range f.promos {
		if p.ID != id {
			continue
		}
		if v, ok := fields["discountPercent"].(int); ok {
			p.DiscountPercent = v
		}
		if v, ok := fields["maxUses"].(int); ok {
			p.MaxUses = v
		}
		if v, ok := fields["active"].(bool); ok {
			p.Active = v
		}
		if v, ok := fields["expiresAt"].(time.Time); ok {
			p.ExpiresAt = &v
		}
		f.promos[code] = p
		return p, nil
	}
	return models.PromoCode{}, repositories.ErrNotFound
}

func (f *fakePromoStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for code, p := range f.promos {
		if p.ID == id {
			delete(f.promos, code)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// Use mirrors the conditional increment-with-ceiling write.
func (f *fakePromoStore) Use(_ context.Context, code string) (models.PromoCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.promos[code]
	if !ok {
		return models.PromoCode{}, repositories.ErrNotFound
	}
	if !p.Active {
		return models.PromoCode{}, repositories.ErrNotFound
	}
	if p.UsedCount >= p.MaxUses {
		return models.PromoCode{}, repositories.ErrPromoExhausted
	}

	p.UsedCount++
	if p.UsedCount >= p.MaxUses {
		p.Active = false
	}
	f.promos[code] = p
	return p, nil
}

func (f *fakePromoStore) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for code, p := range f.promos {
		if p.Active && p.ExpiresAt != nil && p.ExpiresAt.Before(now) {
			p.Active = false
			f.promos[code] = p
			n++
		}
	}
	return n, nil
}

// ─── carts ────────────────────────────────────────────────────────────────────

type fakeCartStore struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]models.Cart // keyed by user ID
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[primitive.ObjectID]models.Cart{}}
}

func (f *fakeCartStore) GetOrCreate(_ context.Context, userID primitive.ObjectID) (models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		c = models.Cart{ID: primitive.NewObjectID(), UserID: userID, Items: []models.CartItem{}}
		f.carts[userID] = c
	}
	return c, nil
}

func (f *fakeCartStore) Save(_ context.Context, userID primitive.ObjectID, items []models.CartItem) (models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		c = models.Cart{ID: primitive.NewObjectID(), UserID: userID}
	}
	c.Items = items
	c.UpdatedAt = time.Now()
	f.carts[userID] = c
	return c, nil
}

func (f *fakeCartStore) UpdateQuantity(_ context.Context, userID, itemID primitive.ObjectID, quantity int) (models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		return models.Cart{}, repositories.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			f.carts[userID] = c
			return c, nil
		}
	}
	return models.Cart{}, repositories.ErrNotFound
}

func (f *fakeCartStore) RemoveItem(_ context.Context, userID, itemID primitive.ObjectID) (models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		return models.Cart{}, repositories.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			f.carts[userID] = c
			return c, nil
		}
	}
	return models.Cart{}, repositories.ErrNotFound
}

func (f *fakeCartStore) Clear(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		return nil
	}
	c.Items = []models.CartItem{}
	f.carts[userID] = c
	return nil
}
