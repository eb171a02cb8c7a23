package quiz

import (
	"time"

	"github.com/quizplanner/quizplanner/internal/engine"
	"github.com/quizplanner/quizplanner/internal/grading"
)

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Name         string    `json:"name" bson:"name"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type Material struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"-" bson:"user_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Content     string    `json:"content" bson:"content"`
	Tags        []string  `json:"tags" bson:"tags"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Quiz is immutable once stored; questions are never edited in place.
type Quiz struct {
	ID          string            `json:"id" bson:"_id"`
	UserID      string            `json:"-" bson:"user_id"`
	MaterialID  string            `json:"material_id" bson:"material_id"`
	Title       string            `json:"title" bson:"title"`
	Description string            `json:"description" bson:"description"`
	Questions   []engine.Question `json:"questions" bson:"questions"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
}

// Attempt is one graded submission. Attempts are append-only: a new attempt
// never mutates a prior one.
type Attempt struct {
	ID             string                   `json:"id" bson:"_id"`
	UserID         string                   `json:"-" bson:"user_id"`
	QuizID         string                   `json:"quiz_id" bson:"quiz_id"`
	QuizTitle      string                   `json:"quiz_title" bson:"quiz_title"`
	Answers        map[string]any           `json:"answers,omitempty" bson:"answers"`
	Results        []grading.QuestionResult `json:"results,omitempty" bson:"results"`
	Score          int                      `json:"score" bson:"score"`
	TotalQuestions int                      `json:"total_questions" bson:"total_questions"`
	Percentage     float64                  `json:"percentage" bson:"percentage"`
	CreatedAt      time.Time                `json:"created_at" bson:"created_at"`
}

// QuizSummary is the list-view shape: no questions, plus joined metadata.
type QuizSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	NumQuestions  int       `json:"num_questions"`
	MaterialID    string    `json:"material_id"`
	MaterialTitle string    `json:"material_title"`
	AttemptCount  int       `json:"attempt_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Page describes one page of a listing.
type Page struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func NewPage(total, page, limit int) Page {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page{Total: total, Page: page, Limit: limit, Pages: pages}
}

type DashboardStats struct {
	TotalMaterials int     `json:"total_materials"`
	TotalQuizzes   int     `json:"total_quizzes"`
	TotalAttempts  int     `json:"total_attempts"`
	AverageScore   float64 `json:"average_score"`
}

type Dashboard struct {
	Stats           DashboardStats `json:"stats"`
	RecentMaterials []Material     `json:"recentMaterials"`
	RecentQuizzes   []QuizSummary  `json:"recentQuizzes"`
	RecentAttempts  []Attempt      `json:"attempts"`
}
