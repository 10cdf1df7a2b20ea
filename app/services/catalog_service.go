package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/pkg/logger"
	"github.com/arthomesoni/arthome/pkg/storage"
)

// PaintingStore is the slice of the painting repository the catalog consumes.
type PaintingStore interface {
	All(ctx context.Context) ([]models.Painting, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Painting, error)
	Create(ctx context.Context, p *models.Painting) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.Painting, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.Painting, error)
}

// WorkshopStore is the slice of the workshop repository the catalog and
// booking services consume.
type WorkshopStore interface {
	All(ctx context.Context) ([]models.Workshop, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Workshop, error)
	Create(ctx context.Context, w *models.Workshop) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.Workshop, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.Workshop, error)
	Book(ctx context.Context, id primitive.ObjectID, p models.Participant) (models.Workshop, error)
}

// CatalogService manages paintings and workshops, including ownership checks
// and stored-image cleanup.
type CatalogService struct {
	paintings PaintingStore
	workshops WorkshopStore
}

func NewCatalogService(paintings PaintingStore, workshops WorkshopStore) *CatalogService {
	return &CatalogService{paintings: paintings, workshops: workshops}
}

// Actor identifies who is performing a catalog mutation.
type Actor struct {
	ID   primitive.ObjectID
	Name string
	Role string
}

func (a Actor) isAdmin() bool { return a.Role == models.RoleAdmin }

// canMutate allows admins, and artists acting on their own entries.
func (a Actor) canMutate(author primitive.ObjectID) bool {
	return a.isAdmin() || (a.Role == models.RoleArtist && a.ID == author)
}

// ─── Paintings ────────────────────────────────────────────────────────────────

func (s *CatalogService) Paintings(ctx context.Context) ([]models.Painting, error) {
	return s.paintings.All(ctx)
}

func (s *CatalogService) Painting(ctx context.Context, id primitive.ObjectID) (models.Painting, error) {
	return s.paintings.FindByID(ctx, id)
}

// CreatePainting stores a new painting authored by the actor.
func (s *CatalogService) CreatePainting(ctx context.Context, actor Actor, p models.Painting) (models.Painting, error) {
	if actor.Role != models.RoleArtist && !actor.isAdmin() {
		return models.Painting{}, ErrForbidden
	}
	p.Author = actor.ID
	p.AuthorName = actor.Name
	if err := s.paintings.Create(ctx, &p); err != nil {
		return models.Painting{}, err
	}
	return p, nil
}

// UpdatePainting applies fields after an ownership check. When a stored local
// image is replaced, the old file is removed from disk.
func (s *CatalogService) UpdatePainting(ctx context.Context, actor Actor, id primitive.ObjectID, fields bson.M) (models.Painting, error) {
	existing, err := s.paintings.FindByID(ctx, id)
	if err != nil {
		return models.Painting{}, err
	}
	if !actor.canMutate(existing.Author) {
		return models.Painting{}, ErrForbidden
	}

	updated, err := s.paintings.Update(ctx, id, fields)
	if err != nil {
		return models.Painting{}, err
	}

	if newImage, ok := fields["image"].(string); ok && newImage != existing.Image {
		removeStoredImage(existing.Image)
	}
	return updated, nil
}

// DeletePainting removes the painting and its stored image.
func (s *CatalogService) DeletePainting(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	existing, err := s.paintings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canMutate(existing.Author) {
		return ErrForbidden
	}

	deleted, err := s.paintings.Delete(ctx, id)
	if err != nil {
		return err
	}
	removeStoredImage(deleted.Image)
	return nil
}

// ─── Workshops ────────────────────────────────────────────────────────────────

func (s *CatalogService) Workshops(ctx context.Context) ([]models.Workshop, error) {
	return s.workshops.All(ctx)
}

func (s *CatalogService) Workshop(ctx context.Context, id primitive.ObjectID) (models.Workshop, error) {
	return s.workshops.FindByID(ctx, id)
}

func (s *CatalogService) CreateWorkshop(ctx context.Context, actor Actor, w models.Workshop) (models.Workshop, error) {
	if actor.Role != models.RoleArtist && !actor.isAdmin() {
		return models.Workshop{}, ErrForbidden
	}
	w.Author = actor.ID
	w.AuthorName = actor.Name
	if err := s.workshops.Create(ctx, &w); err != nil {
		return models.Workshop{}, err
	}
	return w, nil
}

func (s *CatalogService) UpdateWorkshop(ctx context.Context, actor Actor, id primitive.ObjectID, fields bson.M) (models.Workshop, error) {
	existing, err := s.workshops.FindByID(ctx, id)
	if err != nil {
		return models.Workshop{}, err
	}
	if !actor.canMutate(existing.Author) {
		return models.Workshop{}, ErrForbidden
	}

	updated, err := s.workshops.Update(ctx, id, fields)
	if err != nil {
		return models.Workshop{}, err
	}

	if newImage, ok := fields["image"].(string); ok && newImage != existing.Image {
		removeStoredImage(existing.Image)
	}
	return updated, nil
}

func (s *CatalogService) DeleteWorkshop(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	existing, err := s.workshops.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canMutate(existing.Author) {
		return ErrForbidden
	}

	deleted, err := s.workshops.Delete(ctx, id)
	if err != nil {
		return err
	}
	removeStoredImage(deleted.Image)
	return nil
}

// ─── Images ───────────────────────────────────────────────────────────────────

// StoreImage saves uploaded image bytes under dir and returns its public URL.
func StoreImage(dir, filename string, data []byte) (string, error) {
	path := dir + "/" + time.Now().Format("20060102T150405") + "-" + filename
	if err := storage.Put(path, data); err != nil {
		return "", err
	}
	return storage.URL(path), nil
}

// removeStoredImage deletes a locally stored image file. External URLs
// (anything not served from our own /storage prefix) are left alone.
func removeStoredImage(imageURL string) {
	if imageURL == "" {
		return
	}
	const marker = "/storage/"
	idx := strings.Index(imageURL, marker)
	if idx < 0 {
		return
	}
	path := imageURL[idx+len(marker):]
	if err := storage.Delete(path); err != nil {
		logger.Warn("catalog: image cleanup failed", "path", path, "error", err)
	}
}
