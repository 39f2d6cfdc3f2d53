package program

import "time"

type Sponsor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Batch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Exam struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsAvailable bool      `json:"isAvailable"`
	StartsAt    time.Time `json:"startsAt"`
	Duration    int       `json:"durationMinutes"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	IsPublished bool      `json:"isPublished"`
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Setting is a free-form key/value knob edited from the admin dashboard.
type Setting struct {
	ID        string    `json:"id"` // = Key
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type NewSponsor struct {
	Name string `json:"name" validate:"required"`
}

type NewBatch struct {
	Name string `json:"name" validate:"required"`
	Year int    `json:"year" validate:"omitempty,gte=2000"`
}

type NewExam struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	IsAvailable bool      `json:"isAvailable"`
	StartsAt    time.Time `json:"startsAt"`
	Duration    int       `json:"durationMinutes" validate:"omitempty,gt=0"`
}

type NewAnnouncement struct {
	Title       string `json:"title" validate:"required"`
	Body        string `json:"body" validate:"required"`
	IsPublished bool   `json:"isPublished"`
}
