package messaging

import "time"

// Notification is an in-app notice shown to a trainee (or to everyone when
// TraineeID is empty).
type Notification struct {
	ID        string    `json:"id"`
	TraineeID string    `json:"traineeId,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Message is an inbound contact-form message handled from the dashboard.
type Message struct {
	ID        string    `json:"id"`
	FromEmail string    `json:"fromEmail"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type NewNotification struct {
	TraineeID string `json:"traineeId"`
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body" validate:"required"`
}

type NewMessage struct {
	FromEmail string `json:"fromEmail" validate:"required,email"`
	Subject   string `json:"subject" validate:"required"`
	Body      string `json:"body" validate:"required"`
}
