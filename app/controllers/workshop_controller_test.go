package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/pkg/auth"
	"github.com/arthomesoni/arthome/pkg/middleware"
	"github.com/arthomesoni/arthome/pkg/router"
)

// stubWorkshopStore implements services.WorkshopStore with the same
// conditional booking semantics as the Mongo repository.
type stubWorkshopStore struct {
	mu        sync.Mutex
	workshops map[primitive.ObjectID]models.Workshop
}

func newStubWorkshopStore() *stubWorkshopStore {
	return &stubWorkshopStore{workshops: map[primitive.ObjectID]models.Workshop{}}
}

func (s *stubWorkshopStore) add(w models.Workshop) models.Workshop {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	s.workshops[w.ID] = w
	return w
}

func (s *stubWorkshopStore) All(context.Context) ([]models.Workshop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Workshop, 0, len(s.workshops))
	for _, w := range s.workshops {
		out = append(out, w)
	}
	return out, nil
}

func (s *stubWorkshopStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Workshop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workshops[id]
	if !ok {
		return models.Workshop{}, repositories.ErrNotFound
	}
	return w, nil
}

func (s *stubWorkshopStore) Create(_ context.Context, w *models.Workshop) error {
	s.add(*w)
	return nil
}

func (s *stubWorkshopStore) Update(_ context.Context, id primitive.ObjectID, _ bson.M) (models.Workshop, error) {
	return s.FindByID(context.Background(), id)
}

func (s *stubWorkshopStore) Delete(_ context.Context, id primitive.ObjectID) (models.Workshop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workshops[id]
	if !ok {
		return models.Workshop{}, repositories.ErrNotFound
	}
	delete(s.workshops, id)
	return w, nil
}

func (s *stubWorkshopStore) Book(_ context.Context, id primitive.ObjectID, p models.Participant) (models.Workshop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workshops[id]
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
	s.workshops[id] = w
	return w, nil
}

func bookingRouter(store *stubWorkshopStore) http.Handler {
	booking := services.NewBookingService(store)
	ctl := &WorkshopController{booking: booking}

	r := router.New()
	r.Post("/api/workshops/{id}/book", "workshops.book", ctl.Book, middleware.Auth)
	return r.Handler()
}

func bookReq(t *testing.T, target, token string) *http.Request {
	t.Helper()
	body := `{"name":"Анна","email":"anna@example.com","phone":"+7 900 000-00-00"}`
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestBookEndpoint_Success(t *testing.T) {
	store := newStubWorkshopStore()
	w := store.add(models.Workshop{Title: "Акварель", AvailableSpots: 3})
	handler := bookingRouter(store)

	token, err := auth.GenerateToken(primitive.NewObjectID().Hex(), models.RoleUser)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, bookReq(t, "/api/workshops/"+w.ID.Hex()+"/book", token))

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Workshop
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.AvailableSpots)
	assert.Len(t, got.RegisteredParticipants, 1)
}

func TestBookEndpoint_RequiresAuth(t *testing.T) {
	store := newStubWorkshopStore()
	w := store.add(models.Workshop{Title: "Акварель", AvailableSpots: 3})
	handler := bookingRouter(store)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, bookReq(t, "/api/workshops/"+w.ID.Hex()+"/book", ""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Нет авторизации", decodeMessage(t, rec))
}

func TestBookEndpoint_FullWorkshopConflict(t *testing.T) {
	store := newStubWorkshopStore()
	w := store.add(models.Workshop{Title: "Акварель", AvailableSpots: 0})
	handler := bookingRouter(store)

	token, err := auth.GenerateToken(primitive.NewObjectID().Hex(), models.RoleUser)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, bookReq(t, "/api/workshops/"+w.ID.Hex()+"/book", token))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Свободных мест больше нет", decodeMessage(t, rec))
}

func TestBookEndpoint_DoubleBookingConflict(t *testing.T) {
	store := newStubWorkshopStore()
	w := store.add(models.Workshop{Title: "Акварель", AvailableSpots: 5})
	handler := bookingRouter(store)

	userID := primitive.NewObjectID()
	token, err := auth.GenerateToken(userID.Hex(), models.RoleUser)
	require.NoError(t, err)

	target := "/api/workshops/" + w.ID.Hex() + "/book"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, bookReq(t, target, token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, bookReq(t, target, token))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Вы уже записаны на этот мастер-класс", decodeMessage(t, rec))
}

func TestBookEndpoint_UnknownWorkshop(t *testing.T) {
	handler := bookingRouter(newStubWorkshopStore())

	token, err := auth.GenerateToken(primitive.NewObjectID().Hex(), models.RoleUser)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, bookReq(t, "/api/workshops/"+primitive.NewObjectID().Hex()+"/book", token))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Мастер-класс не найден", decodeMessage(t, rec))
}

func TestBookEndpoint_ValidationError(t *testing.T) {
	store := newStubWorkshopStore()
	w := store.add(models.Workshop{Title: "Акварель", AvailableSpots: 5})
	handler := bookingRouter(store)

	token, err := auth.GenerateToken(primitive.NewObjectID().Hex(), models.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/workshops/"+w.ID.Hex()+"/book",
		strings.NewReader(`{"name":"","email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Ошибка валидации", decodeMessage(t, rec))
}
