package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
)

func TestBook_DecrementsSpotsAndAppendsParticipant(t *testing.T) {
	store := newFakeWorkshopStore()
	svc := NewBookingService(store)

	w := store.add(models.Workshop{Title: "Акварель", Price: 2000, AvailableSpots: 5})
	userID := primitive.NewObjectID()

	got, err := svc.Book(context.Background(), w.ID, userID, BookingRequest{
		Name:  "Анна",
		Email: "ANNA@Example.com",
		Phone: "+7 900 000-00-00",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, got.AvailableSpots)
	require.Len(t, got.RegisteredParticipants, 1)
	p := got.RegisteredParticipants[0]
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, "anna@example.com", p.Email)
	assert.False(t, p.RegisteredAt.IsZero())
}

func TestBook_CapacityConserved(t *testing.T) {
	store := newFakeWorkshopStore()
	svc := NewBookingService(store)

	const capacity = 4
	w := store.add(models.Workshop{Title: "Масло", AvailableSpots: capacity})

	for i := 0; i < capacity; i++ {
		got, err := svc.Book(context.Background(), w.ID, primitive.NewObjectID(), BookingRequest{
			Name: "Гость", Email: "guest@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, capacity, got.AvailableSpots+len(got.RegisteredParticipants))
	}

	final, err := store.FindByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Zero(t, final.AvailableSpots)
	assert.Len(t, final.RegisteredParticipants, capacity)
}

func TestBook_FullWorkshop(t *testing.T) {
	store := newFakeWorkshopStore()
	svc := NewBookingService(store)

	w := store.add(models.Workshop{Title: "Скетчинг", AvailableSpots: 0})

	_, err := svc.Book(context.Background(), w.ID, primitive.NewObjectID(), BookingRequest{
		Name: "Гость", Email: "guest@example.com",
	})
	assert.ErrorIs(t, err, repositories.ErrNoSpots)
}

func TestBook_DoubleBookingRejected(t *testing.T) {
	store := newFakeWorkshopStore()
	svc := NewBookingService(store)

	w := store.add(models.Workshop{Title: "Графика", AvailableSpots: 10})
	userID := primitive.NewObjectID()

	_, err := svc.Book(context.Background(), w.ID, userID, BookingRequest{
		Name: "Иван", Email: "ivan@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), w.ID, userID, BookingRequest{
		Name: "Иван", Email: "ivan@example.com",
	})
	assert.ErrorIs(t, err, repositories.ErrAlreadyRegistered)

	final, err := store.FindByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Len(t, final.RegisteredParticipants, 1)
	assert.Equal(t, 9, final.AvailableSpots)
}

func TestBook_UnknownWorkshop(t *testing.T) {
	svc := NewBookingService(newFakeWorkshopStore())

	_, err := svc.Book(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), BookingRequest{
		Name: "Гость", Email: "guest@example.com",
	})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestBook_ConcurrentLastSpot(t *testing.T) {
	store := newFakeWorkshopStore()
	svc := NewBookingService(store)

	w := store.add(models.Workshop{Title: "Последнее место", AvailableSpots: 1})

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), w.ID, primitive.NewObjectID(), BookingRequest{
				Name: "Гость", Email: "guest@example.com",
			})
		}(i)
	}
	wg.Wait()

	var booked, full int
	for _, err := range errs {
		switch {
		case err == nil:
			booked++
		default:
			require.ErrorIs(t, err, repositories.ErrNoSpots)
			full++
		}
	}
	assert.Equal(t, 1, booked)
	assert.Equal(t, attempts-1, full)

	final, err := store.FindByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Zero(t, final.AvailableSpots)
	assert.Len(t, final.RegisteredParticipants, 1)
}
