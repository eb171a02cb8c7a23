package quiz_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/quizplanner/quizplanner/internal/db"
	"github.com/quizplanner/quizplanner/internal/engine"
	"github.com/quizplanner/quizplanner/internal/grading"
	"github.com/quizplanner/quizplanner/internal/quiz"
)

// Both backends must behave identically through the Store interface.
func TestStores(t *testing.T) {
	backends := map[string]func(t *testing.T) quiz.Store{
		"memory": func(t *testing.T) quiz.Store { return quiz.NewInMemoryStore() },
		"sqlite": func(t *testing.T) quiz.Store {
			dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
			h, err := db.Open(context.Background(), db.DriverSQLite, dsn)
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { _ = h.Close() })
			return quiz.NewSQLStore(h)
		},
	}
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
			t.Run("materials", func(t *testing.T) { testMaterials(t, open(t)) })
			t.Run("quizzes", func(t *testing.T) { testQuizzes(t, open(t)) })
			t.Run("dashboard", func(t *testing.T) { testDashboard(t, open(t)) })
		})
	}
}

func seedUser(t *testing.T, s quiz.Store, id, email string) quiz.User {
	t.Helper()
	u := quiz.User{ID: id, Email: email, PasswordHash: "x", Name: "Test", CreatedAt: time.Now()}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func testUsers(t *testing.T, s quiz.Store) {
	ctx := context.Background()
	u := seedUser(t, s, "u1", "a@example.com")

	if err := s.CreateUser(ctx, quiz.User{ID: "u2", Email: "a@example.com"}); !errors.Is(err, quiz.ErrEmailTaken) {
		t.Fatalf("duplicate email: got %v, want ErrEmailTaken", err)
	}

	got, err := s.GetUserByEmail(ctx, "a@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("get by email: %v %+v", err, got)
	}

	got.Name = "Renamed"
	if err := s.UpdateUser(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = s.GetUser(ctx, u.ID)
	if err != nil || got.Name != "Renamed" {
		t.Fatalf("after update: %v %+v", err, got)
	}

	if _, err := s.GetUser(ctx, "nope"); !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("missing user: got %v, want ErrNotFound", err)
	}
}

func testMaterials(t *testing.T, s quiz.Store) {
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com")
	seedUser(t, s, "u2", "b@example.com")

	m := quiz.Material{
		ID: "m1", UserID: "u1", Title: "Biology", Content: "cells divide",
		Tags: []string{"bio"}, CreatedAt: time.Now(),
	}
	if err := s.CreateMaterial(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.GetMaterial(ctx, "u2", "m1"); !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("cross-user read: got %v, want ErrNotFound", err)
	}

	got, err := s.GetMaterial(ctx, "u1", "m1")
	if err != nil || got.Content != "cells divide" || len(got.Tags) != 1 {
		t.Fatalf("get: %v %+v", err, got)
	}

	got.Title = "Biology 101"
	if err := s.UpdateMaterial(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := s.ListMaterials(ctx, "u1")
	if err != nil || len(list) != 1 || list[0].Title != "Biology 101" {
		t.Fatalf("list: %v %+v", err, list)
	}

	if err := s.DeleteMaterial(ctx, "u2", "m1"); !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("cross-user delete: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteMaterial(ctx, "u1", "m1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func testQuizzes(t *testing.T, s quiz.Store) {
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com")

	mat := quiz.Material{ID: "m1", UserID: "u1", Title: "Chemistry", Content: "x", CreatedAt: time.Now()}
	if err := s.CreateMaterial(ctx, mat); err != nil {
		t.Fatalf("material: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"Acids quiz", "Bases quiz", "Salts quiz"} {
		q := quiz.Quiz{
			ID: title, UserID: "u1", MaterialID: "m1", Title: title,
			Questions: []engine.Question{{
				Type: engine.TypeShortAnswer, Question: "Q", CorrectAnswer: "A", Explanation: "E",
			}},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.PutQuiz(ctx, q); err != nil {
			t.Fatalf("put quiz: %v", err)
		}
	}

	att := quiz.Attempt{
		ID: "a1", UserID: "u1", QuizID: "Acids quiz", QuizTitle: "Acids quiz",
		Answers: map[string]any{"0": "A"},
		Results: []grading.QuestionResult{{QuestionID: 0, Correct: true, CorrectAnswer: "A", Explanation: "E"}},
		Score:   1, TotalQuestions: 1, Percentage: 100, CreatedAt: time.Now(),
	}
	if err := s.PutAttempt(ctx, att); err != nil {
		t.Fatalf("put attempt: %v", err)
	}

	// Newest first, joined metadata, attempt counts.
	list, page, err := s.ListQuizzes(ctx, "u1", quiz.ListOpts{})
	if err != nil || len(list) != 3 {
		t.Fatalf("list: %v %+v", err, list)
	}
	if page.Total != 3 || page.Pages != 1 {
		t.Fatalf("page: %+v", page)
	}
	if list[0].Title != "Salts quiz" {
		t.Fatalf("order: got %q first", list[0].Title)
	}
	for _, sm := range list {
		if sm.MaterialTitle != "Chemistry" || sm.NumQuestions != 1 {
			t.Fatalf("summary: %+v", sm)
		}
		want := 0
		if sm.ID == "Acids quiz" {
			want = 1
		}
		if sm.AttemptCount != want {
			t.Fatalf("attempt count for %s: %d, want %d", sm.ID, sm.AttemptCount, want)
		}
	}

	// Search and pagination.
	list, page, err = s.ListQuizzes(ctx, "u1", quiz.ListOpts{Search: "acids"})
	if err != nil || len(list) != 1 || page.Total != 1 {
		t.Fatalf("search: %v %+v %+v", err, list, page)
	}
	list, page, err = s.ListQuizzes(ctx, "u1", quiz.ListOpts{Page: 2, Limit: 2})
	if err != nil || len(list) != 1 || page.Pages != 2 {
		t.Fatalf("pagination: %v %+v %+v", err, list, page)
	}

	// Attempts listing, filtered by quiz.
	atts, _, err := s.ListAttempts(ctx, "u1", quiz.ListOpts{QuizID: "Acids quiz"})
	if err != nil || len(atts) != 1 || atts[0].Score != 1 {
		t.Fatalf("attempts: %v %+v", err, atts)
	}

	// Deleting the quiz removes its attempts.
	if err := s.DeleteQuiz(ctx, "u1", "Acids quiz"); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}
	atts, _, err = s.ListAttempts(ctx, "u1", quiz.ListOpts{})
	if err != nil || len(atts) != 0 {
		t.Fatalf("attempts after delete: %v %+v", err, atts)
	}
}

func testDashboard(t *testing.T, s quiz.Store) {
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com")

	if err := s.CreateMaterial(ctx, quiz.Material{ID: "m1", UserID: "u1", Title: "T", Content: "c", CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutQuiz(ctx, quiz.Quiz{ID: "q1", UserID: "u1", MaterialID: "m1", Title: "Quiz", CreatedAt: time.Now(),
		Questions: []engine.Question{}}); err != nil {
		t.Fatal(err)
	}
	for i, pct := range []float64{50, 100} {
		a := quiz.Attempt{
			ID: "a" + string(rune('1'+i)), UserID: "u1", QuizID: "q1", QuizTitle: "Quiz",
			Answers: map[string]any{}, Results: []grading.QuestionResult{},
			Percentage: pct, CreatedAt: time.Now(),
		}
		if err := s.PutAttempt(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	d, err := s.Dashboard(ctx, "u1")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Stats.TotalMaterials != 1 || d.Stats.TotalQuizzes != 1 || d.Stats.TotalAttempts != 2 {
		t.Fatalf("stats: %+v", d.Stats)
	}
	if d.Stats.AverageScore != 75 {
		t.Fatalf("average: %v, want 75", d.Stats.AverageScore)
	}
	if len(d.RecentMaterials) != 1 || len(d.RecentQuizzes) != 1 || len(d.RecentAttempts) != 2 {
		t.Fatalf("recents: %d %d %d", len(d.RecentMaterials), len(d.RecentQuizzes), len(d.RecentAttempts))
	}

	// Dashboards are per user.
	seedUser(t, s, "u2", "b@example.com")
	d2, err := s.Dashboard(ctx, "u2")
	if err != nil || d2.Stats.TotalAttempts != 0 {
		t.Fatalf("other user dashboard: %v %+v", err, d2.Stats)
	}
}
