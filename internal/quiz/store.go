package quiz

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// ListOpts narrows and paginates listings. Page is 1-based.
type ListOpts struct {
	Page       int
	Limit      int
	Search     string
	MaterialID string
	QuizID     string
}

func (o ListOpts) normalized() ListOpts {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 10
	}
	return o
}

func (o ListOpts) offset() int { return (o.Page - 1) * o.Limit }

// Store is the persistence boundary. Every read and delete is scoped to the
// owning user; records for other users are invisible.
type Store interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, u User) error

	CreateMaterial(ctx context.Context, m Material) error
	GetMaterial(ctx context.Context, userID, id string) (Material, error)
	ListMaterials(ctx context.Context, userID string) ([]Material, error)
	UpdateMaterial(ctx context.Context, m Material) error
	DeleteMaterial(ctx context.Context, userID, id string) error

	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, userID, id string) (Quiz, error)
	ListQuizzes(ctx context.Context, userID string, opts ListOpts) ([]QuizSummary, Page, error)
	// DeleteQuiz removes the quiz and all of its attempts.
	DeleteQuiz(ctx context.Context, userID, id string) error

	PutAttempt(ctx context.Context, a Attempt) error
	ListAttempts(ctx context.Context, userID string, opts ListOpts) ([]Attempt, Page, error)

	Dashboard(ctx context.Context, userID string) (Dashboard, error)
}
