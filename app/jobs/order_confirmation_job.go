// Package jobs defines the queued background jobs: confirmation emails sent
// after checkout and after a workshop booking.
package jobs

import (
	"fmt"

	"github.com/arthomesoni/arthome/pkg/mail"
	"github.com/arthomesoni/arthome/pkg/queue"
)

// OrderConfirmationJob emails the customer after an order is placed.
type OrderConfirmationJob struct {
	OrderID       string  `json:"orderId"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	Total         float64 `json:"total"`
	ItemCount     int     `json:"itemCount"`
}

func (j *OrderConfirmationJob) Handle() error {
	if j.CustomerEmail == "" {
		return nil
	}

	body := fmt.Sprintf(
		"<h2>Спасибо за заказ!</h2>"+
			"<p>%s, ваш заказ №%s принят в обработку.</p>"+
			"<p>Товаров: %d. Сумма: %.2f ₽.</p>"+
			"<p>Мы свяжемся с вами для подтверждения доставки.</p>",
		j.CustomerName, j.OrderID, j.ItemCount, j.Total,
	)

	return mail.To(j.CustomerEmail).
		Subject(fmt.Sprintf("Заказ №%s принят", j.OrderID)).
		Body(body).
		Send()
}

// BookingConfirmationJob emails the attendee after a workshop booking.
type BookingConfirmationJob struct {
	WorkshopID    string `json:"workshopId"`
	WorkshopTitle string `json:"workshopTitle"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

func (j *BookingConfirmationJob) Handle() error {
	if j.Email == "" {
		return nil
	}

	body := fmt.Sprintf(
		"<h2>Вы записаны!</h2>"+
			"<p>%s, ваша запись на мастер-класс «%s» подтверждена.</p>"+
			"<p>Ждем вас в студии.</p>",
		j.Name, j.WorkshopTitle,
	)

	return mail.To(j.Email).
		Subject(fmt.Sprintf("Запись на «%s» подтверждена", j.WorkshopTitle)).
		Body(body).
		Send()
}

// RegisterAll makes every job type deserializable by the queue workers.
func RegisterAll() {
	queue.Register("*jobs.OrderConfirmationJob", func() queue.Job { return &OrderConfirmationJob{} })
	queue.Register("*jobs.BookingConfirmationJob", func() queue.Job { return &BookingConfirmationJob{} })
}
