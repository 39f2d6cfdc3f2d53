package evaluation

import "time"

// Question types
const (
	TypeYesNo        = "yes_no"
	TypeSingleChoice = "single_choice"
	TypeExpression   = "expression"
	TypeRating       = "rating"
)

var QuestionTypes = []string{TypeYesNo, TypeSingleChoice, TypeExpression, TypeRating}

type Question struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Type        string    `json:"type"`
	Options     []string  `json:"options,omitempty"` // single_choice only
	Order       int       `json:"order"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Response links a trainee and a question to an answer. One response per
// (trainee, question); re-submission overwrites.
type Response struct {
	ID         string    `json:"id"`
	TraineeID  string    `json:"traineeId"`
	QuestionID string    `json:"questionId"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

type NewQuestion struct {
	Text    string   `json:"text" validate:"required"`
	Type    string   `json:"type" validate:"required,evaltype"`
	Options []string `json:"options" validate:"required_if=Type single_choice"`
	Order   int      `json:"order"`
}

type NewResponse struct {
	TraineeID  string `json:"traineeId" validate:"required"`
	QuestionID string `json:"questionId" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
}
