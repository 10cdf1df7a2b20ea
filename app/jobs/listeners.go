package jobs

import (
	"encoding/json"

	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/pkg/event"
	"github.com/arthomesoni/arthome/pkg/logger"
	"github.com/arthomesoni/arthome/pkg/queue"
	"github.com/arthomesoni/arthome/pkg/ws"
)

// RegisterListeners fans domain events out to the mail queue, the admin
// websocket hub, and the report cache.
func RegisterListeners(hub *ws.Hub) {
	event.Listen(services.EventOrderCreated, func(payload interface{}) {
		ev, ok := payload.(services.OrderEvent)
		if !ok {
			return
		}

		if err := queue.Dispatch(&OrderConfirmationJob{
			OrderID:       ev.OrderID,
			CustomerName:  ev.CustomerName,
			CustomerEmail: ev.CustomerEmail,
			Total:         ev.Total,
			ItemCount:     ev.ItemCount,
		}); err != nil {
			logger.Error("jobs: dispatch order confirmation", "error", err)
		}

		broadcast(hub, services.EventOrderCreated, ev)
		services.InvalidateCache()
	})

	event.Listen(services.EventWorkshopBooked, func(payload interface{}) {
		ev, ok := payload.(services.BookedEvent)
		if !ok {
			return
		}

		if err := queue.Dispatch(&BookingConfirmationJob{
			WorkshopID:    ev.WorkshopID,
			WorkshopTitle: ev.WorkshopTitle,
			Name:          ev.Name,
			Email:         ev.Email,
		}); err != nil {
			logger.Error("jobs: dispatch booking confirmation", "error", err)
		}

		broadcast(hub, services.EventWorkshopBooked, ev)
		services.InvalidateCache()
	})
}

// broadcast pushes {"event": ..., "data": ...} to connected admin clients.
func broadcast(hub *ws.Hub, name string, payload interface{}) {
	if hub == nil {
		return
	}
	msg, err := json.Marshal(map[string]interface{}{
		"event": name,
		"data":  payload,
	})
	if err != nil {
		logger.Error("jobs: marshal broadcast", "event", name, "error", err)
		return
	}
	hub.Broadcast <- msg
}
