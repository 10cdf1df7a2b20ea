package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/pkg/bind"
	"github.com/arthomesoni/arthome/pkg/middleware"
	"github.com/arthomesoni/arthome/pkg/response"
)

// WorkshopController serves the workshop catalog and seat booking.
type WorkshopController struct {
	catalog *services.CatalogService
	booking *services.BookingService
	users   *services.AuthService
}

func NewWorkshopController(catalog *services.CatalogService, booking *services.BookingService, users *services.AuthService) *WorkshopController {
	return &WorkshopController{catalog: catalog, booking: booking, users: users}
}

func (c *WorkshopController) actor(r *http.Request) (services.Actor, error) {
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

func (c *WorkshopController) List(w http.ResponseWriter, r *http.Request) {
	workshops, err := c.catalog.Workshops(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, workshops)
}

func (c *WorkshopController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Мастер-класс не найден")
		return
	}

	workshop, err := c.catalog.Workshop(r.Context(), id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Мастер-класс не найден")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, workshop)
	}
}

func (c *WorkshopController) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := c.actor(r)
	if err != nil {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	fields, err := parseWorkshopInput(r)
	if err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	workshop := workshopFromFields(fields)
	if workshop.Title == "" || workshop.Date.IsZero() {
		response.Message(w, http.StatusBadRequest, "Название и дата обязательны")
		return
	}

	created, err := c.catalog.CreateWorkshop(r.Context(), actor, workshop)
	switch {
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w, "Доступ запрещен")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusCreated, created)
	}
}

func (c *WorkshopController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Мастер-класс не найден")
		return
	}

	actor, err := c.actor(r)
	if err != nil {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	fields, err := parseWorkshopInput(r)
	if err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(fields) == 0 {
		response.Message(w, http.StatusBadRequest, "Нет данных для обновления")
		return
	}

	updated, err := c.catalog.UpdateWorkshop(r.Context(), actor, id, fields)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Мастер-класс не найден")
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w, "Доступ запрещен")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, updated)
	}
}

func (c *WorkshopController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Мастер-класс не найден")
		return
	}

	actor, err := c.actor(r)
	if err != nil {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	err = c.catalog.DeleteWorkshop(r.Context(), actor, id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Мастер-класс не найден")
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w, "Доступ запрещен")
	case err != nil:
		serverError(w, r, err)
	default:
		response.Message(w, http.StatusOK, "Мастер-класс удален")
	}
}

type bookRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// Book registers the caller on the workshop. The seat decrement is atomic, so
// concurrent requests for the last spot cannot both succeed.
func (c *WorkshopController) Book(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Мастер-класс не найден")
		return
	}
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	var body bookRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	workshop, err := c.booking.Book(r.Context(), id, userID, services.BookingRequest{
		Name:  body.Name,
		Email: body.Email,
		Phone: body.Phone,
	})
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Мастер-класс не найден")
	case errors.Is(err, repositories.ErrNoSpots):
		response.Message(w, http.StatusConflict, "Свободных мест больше нет")
	case errors.Is(err, repositories.ErrAlreadyRegistered):
		response.Message(w, http.StatusConflict, "Вы уже записаны на этот мастер-класс")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, workshop)
	}
}

func parseWorkshopInput(r *http.Request) (bson.M, error) {
	if isMultipart(r) {
		return parseWorkshopForm(r)
	}

	var body struct {
		Title          *string  `json:"title"`
		Description    *string  `json:"description"`
		Date           *string  `json:"date"`
		Duration       *string  `json:"duration"`
		Price          *float64 `json:"price"`
		AvailableSpots *int     `json:"availableSpots"`
		Image          *string  `json:"image"`
		Location       *string  `json:"location"`
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
	if body.Date != nil {
		date, err := parseDate(*body.Date)
		if err != nil {
			return nil, err
		}
		fields["date"] = date
	}
	if body.Duration != nil {
		fields["duration"] = *body.Duration
	}
	if body.Price != nil {
		fields["price"] = *body.Price
	}
	if body.AvailableSpots != nil {
		if *body.AvailableSpots < 0 {
			return nil, errors.New("количество мест не может быть отрицательным")
		}
		fields["availableSpots"] = *body.AvailableSpots
	}
	if body.Image != nil {
		fields["image"] = *body.Image
	}
	if body.Location != nil {
		fields["location"] = *body.Location
	}
	return fields, nil
}

func parseWorkshopForm(r *http.Request) (bson.M, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.New("не удалось разобрать форму")
	}

	fields := bson.M{}
	for _, key := range []string{"title", "description", "duration", "location"} {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			fields[key] = vs[0]
		}
	}
	if vs, ok := r.MultipartForm.Value["date"]; ok && len(vs) > 0 {
		date, err := parseDate(vs[0])
		if err != nil {
			return nil, err
		}
		fields["date"] = date
	}
	if vs, ok := r.MultipartForm.Value["price"]; ok && len(vs) > 0 {
		price, err := strconv.ParseFloat(vs[0], 64)
		if err != nil {
			return nil, errors.New("цена должна быть числом")
		}
		fields["price"] = price
	}
	if vs, ok := r.MultipartForm.Value["availableSpots"]; ok && len(vs) > 0 {
		spots, err := strconv.Atoi(vs[0])
		if err != nil || spots < 0 {
			return nil, errors.New("количество мест должно быть неотрицательным числом")
		}
		fields["availableSpots"] = spots
	}

	url, err := storeUploadedImage(r, "images/workshops")
	if err != nil {
		return nil, err
	}
	if url != "" {
		fields["image"] = url
	}
	return fields, nil
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("некорректный формат даты")
}

func workshopFromFields(fields bson.M) models.Workshop {
	w := models.Workshop{
		RegisteredParticipants: []models.Participant{},
		CreatedAt:              time.Now(),
	}
	if v, ok := fields["title"].(string); ok {
		w.Title = v
	}
	if v, ok := fields["description"].(string); ok {
		w.Description = v
	}
	if v, ok := fields["date"].(time.Time); ok {
		w.Date = v
	}
	if v, ok := fields["duration"].(string); ok {
		w.Duration = v
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
	if v, ok := fields["location"].(string); ok {
		w.Location = v
	}
	return w
}
