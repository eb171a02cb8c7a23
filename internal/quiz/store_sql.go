package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quizplanner/quizplanner/internal/engine"
)

// SQLStore persists records through database/sql ("sqlite" or "postgres").
// Question, answer and result payloads live in JSON columns; listings filter
// and paginate in SQL.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateUser(ctx context.Context, u User) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email=$1`, u.Email).Scan(&exists)
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id,email,password_hash,name,created_at) VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.CreatedAt.Unix())
	return err
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id,email,password_hash,name,created_at FROM users WHERE id=$1`, id))
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id,email,password_hash,name,created_at FROM users WHERE email=$1`, email))
}

func (s *SQLStore) scanUser(row *sql.Row) (User, error) {
	var u User
	var created int64
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.CreatedAt = time.Unix(created, 0)
	return u, nil
}

func (s *SQLStore) UpdateUser(ctx context.Context, u User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name=$1, password_hash=$2 WHERE id=$3`,
		u.Name, u.PasswordHash, u.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) CreateMaterial(ctx context.Context, m Material) error {
	tags, err := json.Marshal(m.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO materials (id,user_id,title,description,content,tags_json,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.UserID, m.Title, m.Description, m.Content, string(tags), m.CreatedAt.Unix())
	return err
}

func (s *SQLStore) GetMaterial(ctx context.Context, userID, id string) (Material, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,title,description,content,tags_json,created_at
		 FROM materials WHERE id=$1 AND user_id=$2`, id, userID)
	return scanMaterial(row.Scan)
}

func (s *SQLStore) ListMaterials(ctx context.Context, userID string) ([]Material, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,user_id,title,description,content,tags_json,created_at
		 FROM materials WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Material{}
	for rows.Next() {
		m, err := scanMaterial(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMaterial(scan func(...any) error) (Material, error) {
	var m Material
	var tags string
	var created int64
	if err := scan(&m.ID, &m.UserID, &m.Title, &m.Description, &m.Content, &tags, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Material{}, ErrNotFound
		}
		return Material{}, err
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return Material{}, err
	}
	m.CreatedAt = time.Unix(created, 0)
	return m, nil
}

func (s *SQLStore) UpdateMaterial(ctx context.Context, m Material) error {
	tags, err := json.Marshal(m.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE materials SET title=$1, description=$2, content=$3, tags_json=$4
		 WHERE id=$5 AND user_id=$6`,
		m.Title, m.Description, m.Content, string(tags), m.ID, m.UserID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) DeleteMaterial(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM materials WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id,user_id,material_id,title,description,questions_json,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		q.ID, q.UserID, q.MaterialID, q.Title, q.Description, string(qj), q.CreatedAt.Unix())
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, userID, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,material_id,title,description,questions_json,created_at
		 FROM quizzes WHERE id=$1 AND user_id=$2`, id, userID)
	var q Quiz
	var qjson string
	var created int64
	if err := row.Scan(&q.ID, &q.UserID, &q.MaterialID, &q.Title, &q.Description, &qjson, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	q.CreatedAt = time.Unix(created, 0)
	return q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, userID string, opts ListOpts) ([]QuizSummary, Page, error) {
	opts = opts.normalized()

	where := []string{"q.user_id=$1"}
	args := []any{userID}
	if opts.Search != "" {
		args = append(args, "%"+strings.ToLower(opts.Search)+"%")
		where = append(where, fmt.Sprintf(
			"(LOWER(q.title) LIKE $%d OR LOWER(q.description) LIKE $%d)", len(args), len(args)))
	}
	if opts.MaterialID != "" {
		args = append(args, opts.MaterialID)
		where = append(where, fmt.Sprintf("q.material_id=$%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quizzes q WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, Page{}, err
	}

	args = append(args, opts.Limit, opts.offset())
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT q.id, q.title, q.description, q.material_id, q.questions_json, q.created_at,
		        COALESCE(m.title, 'Unknown'),
		        (SELECT COUNT(*) FROM attempts a WHERE a.quiz_id=q.id AND a.user_id=q.user_id)
		 FROM quizzes q
		 LEFT JOIN materials m ON m.id=q.material_id
		 WHERE %s
		 ORDER BY q.created_at DESC
		 LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, Page{}, err
	}
	defer rows.Close()

	out := []QuizSummary{}
	for rows.Next() {
		var sm QuizSummary
		var qjson string
		var created int64
		if err := rows.Scan(&sm.ID, &sm.Title, &sm.Description, &sm.MaterialID, &qjson,
			&created, &sm.MaterialTitle, &sm.AttemptCount); err != nil {
			return nil, Page{}, err
		}
		var qs []engine.Question
		if err := json.Unmarshal([]byte(qjson), &qs); err != nil {
			return nil, Page{}, err
		}
		sm.NumQuestions = len(qs)
		sm.CreatedAt = time.Unix(created, 0)
		out = append(out, sm)
	}
	return out, NewPage(total, opts.Page, opts.Limit), rows.Err()
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, userID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if err = requireRow(res); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM attempts WHERE quiz_id=$1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) PutAttempt(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	rj, err := json.Marshal(a.Results)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attempts (id,user_id,quiz_id,quiz_title,answers_json,results_json,
		                       score,total_questions,percentage,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.UserID, a.QuizID, a.QuizTitle, string(aj), string(rj),
		a.Score, a.TotalQuestions, a.Percentage, a.CreatedAt.Unix())
	return err
}

func (s *SQLStore) ListAttempts(ctx context.Context, userID string, opts ListOpts) ([]Attempt, Page, error) {
	opts = opts.normalized()

	where := []string{"user_id=$1"}
	args := []any{userID}
	if opts.QuizID != "" {
		args = append(args, opts.QuizID)
		where = append(where, fmt.Sprintf("quiz_id=$%d", len(args)))
	}
	if opts.Search != "" {
		args = append(args, "%"+strings.ToLower(opts.Search)+"%")
		where = append(where, fmt.Sprintf("LOWER(quiz_title) LIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, Page{}, err
	}

	args = append(args, opts.Limit, opts.offset())
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id,user_id,quiz_id,quiz_title,answers_json,results_json,
		        score,total_questions,percentage,created_at
		 FROM attempts WHERE %s
		 ORDER BY created_at DESC
		 LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, Page{}, err
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows.Scan)
		if err != nil {
			return nil, Page{}, err
		}
		out = append(out, a)
	}
	return out, NewPage(total, opts.Page, opts.Limit), rows.Err()
}

func scanAttempt(scan func(...any) error) (Attempt, error) {
	var a Attempt
	var answers, results string
	var created int64
	if err := scan(&a.ID, &a.UserID, &a.QuizID, &a.QuizTitle, &answers, &results,
		&a.Score, &a.TotalQuestions, &a.Percentage, &created); err != nil {
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(results), &a.Results); err != nil {
		return Attempt{}, err
	}
	a.CreatedAt = time.Unix(created, 0)
	return a, nil
}

func (s *SQLStore) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	var d Dashboard

	for _, c := range []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM materials WHERE user_id=$1`, &d.Stats.TotalMaterials},
		{`SELECT COUNT(*) FROM quizzes WHERE user_id=$1`, &d.Stats.TotalQuizzes},
		{`SELECT COUNT(*) FROM attempts WHERE user_id=$1`, &d.Stats.TotalAttempts},
	} {
		if err := s.db.QueryRowContext(ctx, c.query, userID).Scan(c.dst); err != nil {
			return Dashboard{}, err
		}
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(percentage), 0) FROM attempts WHERE user_id=$1`,
		userID).Scan(&d.Stats.AverageScore); err != nil {
		return Dashboard{}, err
	}

	mats, err := s.recentMaterials(ctx, userID, 3)
	if err != nil {
		return Dashboard{}, err
	}
	d.RecentMaterials = mats

	quizzes, _, err := s.ListQuizzes(ctx, userID, ListOpts{Page: 1, Limit: 3})
	if err != nil {
		return Dashboard{}, err
	}
	d.RecentQuizzes = quizzes

	attempts, _, err := s.ListAttempts(ctx, userID, ListOpts{Page: 1, Limit: 5})
	if err != nil {
		return Dashboard{}, err
	}
	d.RecentAttempts = attempts
	return d, nil
}

func (s *SQLStore) recentMaterials(ctx context.Context, userID string, limit int) ([]Material, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,user_id,title,description,content,tags_json,created_at
		 FROM materials WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Material{}
	for rows.Next() {
		m, err := scanMaterial(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
