package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/pkg/middleware"
	"github.com/arthomesoni/arthome/pkg/response"
)

const maxUploadBytes = 32 << 20 // 32 MB

// PaintingController serves the painting catalog. Writes require the artist
// or admin role; mutations additionally require ownership.
type PaintingController struct {
	catalog *services.CatalogService
	users   *services.AuthService
}

func NewPaintingController(catalog *services.CatalogService, users *services.AuthService) *PaintingController {
	return &PaintingController{catalog: catalog, users: users}
}

// actor resolves the authenticated caller into a catalog actor, fetching the
// user record for the display name.
func (c *PaintingController) actor(r *http.Request) (services.Actor, error) {
	userID, ok := callerID(r)
	if !ok {
		return services.Actor{}, repositories.ErrNotFound
	}
	user, err := c.users.Me(r.Context(), userID)
	if err != nil {
		return services.Actor{}, err
	}
	return services.Actor{ID: user.ID, Name: user.Name, Role: middleware.RoleFromCtx(r.Context())}, nil
}

func (c *PaintingController) List(w http.ResponseWriter, r *http.Request) {
	paintings, err := c.catalog.Paintings(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, paintings)
}

func (c *PaintingController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Картина не найдена")
		return
	}

	painting, err := c.catalog.Painting(r.Context(), id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Картина не найдена")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, painting)
	}
}

func (c *PaintingController) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := c.actor(r)
	if err != nil {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	fields, err := parsePaintingInput(r)
	if err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	painting := paintingFromFields(fields)
	if painting.Title == "" || painting.Price <= 0 {
		response.Message(w, http.StatusBadRequest, "Название и цена обязательны")
		return
	}

	created, err := c.catalog.CreatePainting(r.Context(), actor, painting)
	switch {
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w, "Доступ запрещен")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusCreated, created)
	}
}

func (c *PaintingController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Картина не найдена")
		return
	}

	actor, err := c.actor(r)
	if err != nil {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	fields, err := parsePaintingInput(r)
	if err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(fields) == 0 {
		response.Message(w, http.StatusBadRequest, "Нет данных для обновления")
		return
	}

	updated, err := c.catalog.UpdatePainting(r.Context(), actor, id, fields)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Картина не найдена")
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w, "Доступ запрещен")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, updated)
	}
}

func (c *PaintingController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Картина не найдена")
		return
	}

	actor, err := c.actor(r)
	if err != nil {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	err = c.catalog.DeletePainting(r.Context(), actor, id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Картина не найдена")
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w, "Доступ запрещен")
	case err != nil:
		serverError(w, r, err)
	default:
		response.Message(w, http.StatusOK, "Картина удалена")
	}
}

// parsePaintingInput reads the request as multipart form data (fields plus an
// optional image file) or plain JSON and returns the present fields only, so
// the same parser serves both create and partial update.
func parsePaintingInput(r *http.Request) (bson.M, error) {
	if isMultipart(r) {
		return parsePaintingForm(r)
	}

	var body struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Category    *string  `json:"category"`
		Price       *float64 `json:"price"`
		InStock     *bool    `json:"inStock"`
		Image       *string  `json:"image"`
	}
	if err := decodeJSONBody(r, &body); err != nil {
		return nil, err
	}

	fields := bson.M{}
	if body.Title != nil {
		fields["title"] = *body.Title
	}
	if body.Description != nil {
		fields["description"] = *body.Description
	}
	if body.Category != nil {
		fields["category"] = *body.Category
	}
	if body.Price != nil {
		fields["price"] = *body.Price
	}
	if body.InStock != nil {
		fields["inStock"] = *body.InStock
	}
	if body.Image != nil {
		fields["image"] = *body.Image
	}
	return fields, nil
}

func parsePaintingForm(r *http.Request) (bson.M, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.New("не удалось разобрать форму")
	}

	fields := bson.M{}
	for _, key := range []string{"title", "description", "category"} {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			fields[key] = vs[0]
		}
	}
	if vs, ok := r.MultipartForm.Value["price"]; ok && len(vs) > 0 {
		price, err := strconv.ParseFloat(vs[0], 64)
		if err != nil {
			return nil, errors.New("цена должна быть числом")
		}
		fields["price"] = price
	}
	if vs, ok := r.MultipartForm.Value["inStock"]; ok && len(vs) > 0 {
		inStock, err := strconv.ParseBool(vs[0])
		if err != nil {
			return nil, errors.New("inStock должно быть true или false")
		}
		fields["inStock"] = inStock
	}

	url, err := storeUploadedImage(r, "images/paintings")
	if err != nil {
		return nil, err
	}
	if url != "" {
		fields["image"] = url
	}
	return fields, nil
}

func paintingFromFields(fields bson.M) models.Painting {
	p := models.Painting{InStock: true, CreatedAt: time.Now()}
	if v, ok := fields["title"].(string); ok {
		p.Title = v
	}
	if v, ok := fields["description"].(string); ok {
		p.Description = v
	}
	if v, ok := fields["category"].(string); ok {
		p.Category = v
	}
	if v, ok := fields["price"].(float64); ok {
		p.Price = v
	}
	if v, ok := fields["inStock"].(bool); ok {
		p.InStock = v
	}
	if v, ok := fields["image"].(string); ok {
		p.Image = v
	}
	return p
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// storeUploadedImage saves the "image" form file and returns its public URL,
// or "" when no file was sent.
func storeUploadedImage(r *http.Request, dir string) (string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", errors.New("не удалось прочитать файл изображения")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return "", errors.New("не удалось прочитать файл изображения")
	}

	url, err := services.StoreImage(dir, header.Filename, data)
	if err != nil {
		return "", errors.New("не удалось сохранить изображение")
	}
	return url, nil
}

func decodeJSONBody(r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return errors.New("некорректный JSON")
	}
	return nil
}
