package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/pkg/event"
	"github.com/arthomesoni/arthome/pkg/logger"
	"github.com/arthomesoni/arthome/pkg/metrics"
)

// EventWorkshopBooked is fired after a successful booking. Payload: BookedEvent.
const EventWorkshopBooked = "workshop.booked"

// BookedEvent is the payload carried by EventWorkshopBooked.
type BookedEvent struct {
	WorkshopID    string `json:"workshopId"`
	WorkshopTitle string `json:"workshopTitle"`
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	SpotsLeft     int    `json:"spotsLeft"`
}

// BookingService handles workshop seat registration.
type BookingService struct {
	workshops WorkshopStore
}

func NewBookingService(workshops WorkshopStore) *BookingService {
	return &BookingService{workshops: workshops}
}

// BookingRequest is the contact info the attendee supplies.
type BookingRequest struct {
	Name  string
	Email string
	Phone string
}

// Book registers the user on the workshop. The seat decrement and the
// participant append happen in one conditional write, so overselling and
// double registration are impossible even under concurrent requests.
func (s *BookingService) Book(ctx context.Context, workshopID, userID primitive.ObjectID, req BookingRequest) (models.Workshop, error) {
	participant := models.Participant{
		UserID:       userID,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		RegisteredAt: time.Now(),
	}

	workshop, err := s.workshops.Book(ctx, workshopID, participant)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			metrics.BookingsTotal.WithLabelValues("not_found").Inc()
		case errors.Is(err, repositories.ErrNoSpots):
			metrics.BookingsTotal.WithLabelValues("full").Inc()
		case errors.Is(err, repositories.ErrAlreadyRegistered):
			metrics.BookingsTotal.WithLabelValues("duplicate").Inc()
		default:
			metrics.BookingsTotal.WithLabelValues("error").Inc()
		}
		return models.Workshop{}, err
	}

	metrics.BookingsTotal.WithLabelValues("booked").Inc()
	logger.WithCtx(ctx).Info("workshop booked",
		"workshop_id", workshop.ID.Hex(),
		"user_id", userID.Hex(),
		"spots_left", workshop.AvailableSpots,
	)

	event.FireAsync(EventWorkshopBooked, BookedEvent{
		WorkshopID:    workshop.ID.Hex(),
		WorkshopTitle: workshop.Title,
		UserID:        userID.Hex(),
		Name:          participant.Name,
		Email:         participant.Email,
		SpotsLeft:     workshop.AvailableSpots,
	})

	return workshop, nil
}
