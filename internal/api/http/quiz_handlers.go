package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	auth "github.com/quizplanner/quizplanner/internal/auth/middleware"
	"github.com/quizplanner/quizplanner/internal/engine"
	"github.com/quizplanner/quizplanner/internal/grading"
	"github.com/quizplanner/quizplanner/internal/quiz"
)

// QuestionGenerator is the engine surface the handlers need.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, content string, n int, types []string) []engine.Question
}

// POST /api/quizzes/generate
// { "material_id": "...", "num_questions": 5, "question_types": [...], "title": "...", "description": "..." }
func GenerateQuizHandler(store quiz.Store, gen QuestionGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MaterialID    string   `json:"material_id"`
			NumQuestions  int      `json:"num_questions"`
			QuestionTypes []string `json:"question_types"`
			Title         string   `json:"title"`
			Description   string   `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.MaterialID == "" {
			http.Error(w, "material_id is required", http.StatusBadRequest)
			return
		}
		for _, qt := range req.QuestionTypes {
			switch qt {
			case engine.TypeMultipleChoice, engine.TypeTrueFalse, engine.TypeShortAnswer:
			default:
				http.Error(w, "unknown question type: "+qt, http.StatusBadRequest)
				return
			}
		}

		userID := auth.SubjectFromContext(r.Context())
		material, err := store.GetMaterial(r.Context(), userID, req.MaterialID)
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "study material not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		questions := gen.GenerateQuestions(r.Context(), material.Content, req.NumQuestions, req.QuestionTypes)

		title := req.Title
		if title == "" {
			title = "Quiz on " + material.Title
		}
		description := req.Description
		if description == "" {
			description = "Generated quiz based on " + material.Title
		}
		q := quiz.Quiz{
			ID:          uuid.NewString(),
			UserID:      userID,
			MaterialID:  material.ID,
			Title:       title,
			Description: description,
			Questions:   questions,
			CreatedAt:   time.Now(),
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"quiz_id":       q.ID,
			"title":         q.Title,
			"num_questions": len(q.Questions),
		})
	}
}

// GET /api/quizzes?page=&limit=&search=&material=
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := listOptsFromQuery(r)
		opts.MaterialID = r.URL.Query().Get("material")

		list, page, err := store.ListQuizzes(r.Context(), auth.SubjectFromContext(r.Context()), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"quizzes":    list,
			"pagination": page,
		})
	}
}

// GET /api/quizzes/{quizID}
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuiz(r.Context(),
			auth.SubjectFromContext(r.Context()), chi.URLParam(r, "quizID"))
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "quiz not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(q)
	}
}

// DELETE /api/quizzes/{quizID}
func DeleteQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteQuiz(r.Context(),
			auth.SubjectFromContext(r.Context()), chi.URLParam(r, "quizID"))
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "quiz not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "quiz deleted"})
	}
}

// POST /api/quizzes/{quizID}/attempt  { "answers": { "0": ..., "1": ... } }
// Answer keys are decimal question indexes. A payload whose answers field is
// not an object is the caller's error and is rejected up front.
func SubmitAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers json.RawMessage `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if len(req.Answers) == 0 {
			http.Error(w, "quiz answers are required", http.StatusBadRequest)
			return
		}
		var answers map[string]any
		if err := json.Unmarshal(req.Answers, &answers); err != nil {
			http.Error(w, "answers must be an object keyed by question index", http.StatusBadRequest)
			return
		}

		userID := auth.SubjectFromContext(r.Context())
		q, err := store.GetQuiz(r.Context(), userID, chi.URLParam(r, "quizID"))
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "quiz not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		gq := make([]grading.Q, len(q.Questions))
		for i, question := range q.Questions {
			gq[i] = grading.Q{
				Type:          question.Type,
				CorrectAnswer: question.CorrectAnswer,
				Explanation:   question.Explanation,
			}
		}
		res := grading.Grade(gq, answers)

		attempt := quiz.Attempt{
			ID:             uuid.NewString(),
			UserID:         userID,
			QuizID:         q.ID,
			QuizTitle:      q.Title,
			Answers:        answers,
			Results:        res.Results,
			Score:          res.Score,
			TotalQuestions: res.Total,
			Percentage:     res.Percentage,
			CreatedAt:      time.Now(),
		}
		if err := store.PutAttempt(r.Context(), attempt); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"attempt_id":      attempt.ID,
			"score":           res.Score,
			"total_questions": res.Total,
			"percentage":      res.Percentage,
			"results":         res.Results,
		})
	}
}

// attemptListItem omits the detailed results and raw answers in list views.
type attemptListItem struct {
	ID             string    `json:"id"`
	QuizID         string    `json:"quiz_id"`
	QuizTitle      string    `json:"quiz_title"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	CreatedAt      time.Time `json:"created_at"`
}

func toListItems(attempts []quiz.Attempt) []attemptListItem {
	out := make([]attemptListItem, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, attemptListItem{
			ID:             a.ID,
			QuizID:         a.QuizID,
			QuizTitle:      a.QuizTitle,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			Percentage:     a.Percentage,
			CreatedAt:      a.CreatedAt,
		})
	}
	return out
}

// GET /api/quizzes/attempts?page=&limit=&search=&quiz=
func ListAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := listOptsFromQuery(r)
		opts.QuizID = r.URL.Query().Get("quiz")

		attempts, page, err := store.ListAttempts(r.Context(), auth.SubjectFromContext(r.Context()), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"attempts":   toListItems(attempts),
			"pagination": page,
		})
	}
}

// GET /api/quizzes/attempts/{quizID}?page=&limit=
func QuizAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := listOptsFromQuery(r)
		opts.QuizID = chi.URLParam(r, "quizID")

		attempts, page, err := store.ListAttempts(r.Context(), auth.SubjectFromContext(r.Context()), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"attempts":   attempts,
			"pagination": page,
		})
	}
}

// GET /api/quizzes/dashboard
func DashboardHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := store.Dashboard(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to retrieve dashboard data: %v", err), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"stats":           d.Stats,
			"recentMaterials": d.RecentMaterials,
			"recentQuizzes":   d.RecentQuizzes,
			"attempts":        toListItems(d.RecentAttempts),
		})
	}
}

func listOptsFromQuery(r *http.Request) quiz.ListOpts {
	q := r.URL.Query()
	opts := quiz.ListOpts{Search: strings.TrimSpace(q.Get("search"))}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = v
	}
	return opts
}
