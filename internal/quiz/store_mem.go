package quiz

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memoryStore keeps everything in maps. Used for tests and for running the
// gateway without a database.
type memoryStore struct {
	mu        sync.RWMutex
	users     map[string]User
	materials map[string]Material
	quizzes   map[string]Quiz
	attempts  map[string]Attempt
}

func NewInMemoryStore() Store {
	return &memoryStore{
		users:     map[string]User{},
		materials: map[string]Material{},
		quizzes:   map[string]Quiz{},
		attempts:  map[string]Attempt{},
	}
}

func (m *memoryStore) CreateUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.users {
		if ex.Email == u.Email {
			return ErrEmailTaken
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memoryStore) GetUser(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *memoryStore) GetUserByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *memoryStore) UpdateUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *memoryStore) CreateMaterial(_ context.Context, mat Material) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materials[mat.ID] = mat
	return nil
}

func (m *memoryStore) GetMaterial(_ context.Context, userID, id string) (Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mat, ok := m.materials[id]
	if !ok || mat.UserID != userID {
		return Material{}, ErrNotFound
	}
	return mat, nil
}

func (m *memoryStore) ListMaterials(_ context.Context, userID string) ([]Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Material{}
	for _, mat := range m.materials {
		if mat.UserID == userID {
			out = append(out, mat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) UpdateMaterial(_ context.Context, mat Material) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.materials[mat.ID]
	if !ok || ex.UserID != mat.UserID {
		return ErrNotFound
	}
	m.materials[mat.ID] = mat
	return nil
}

func (m *memoryStore) DeleteMaterial(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mat, ok := m.materials[id]
	if !ok || mat.UserID != userID {
		return ErrNotFound
	}
	delete(m.materials, id)
	return nil
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(_ context.Context, userID, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok || q.UserID != userID {
		return Quiz{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, userID string, opts ListOpts) ([]QuizSummary, Page, error) {
	opts = opts.normalized()
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []Quiz
	for _, q := range m.quizzes {
		if q.UserID != userID {
			continue
		}
		if opts.MaterialID != "" && q.MaterialID != opts.MaterialID {
			continue
		}
		if opts.Search != "" && !matchesSearch(opts.Search, q.Title, q.Description) {
			continue
		}
		all = append(all, q)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	all = paginate(all, opts)

	out := make([]QuizSummary, 0, len(all))
	for _, q := range all {
		out = append(out, m.summarizeLocked(q))
	}
	return out, NewPage(total, opts.Page, opts.Limit), nil
}

func (m *memoryStore) summarizeLocked(q Quiz) QuizSummary {
	attempts := 0
	for _, a := range m.attempts {
		if a.QuizID == q.ID && a.UserID == q.UserID {
			attempts++
		}
	}
	title := "Unknown"
	if mat, ok := m.materials[q.MaterialID]; ok {
		title = mat.Title
	}
	return QuizSummary{
		ID:            q.ID,
		Title:         q.Title,
		Description:   q.Description,
		NumQuestions:  len(q.Questions),
		MaterialID:    q.MaterialID,
		MaterialTitle: title,
		AttemptCount:  attempts,
		CreatedAt:     q.CreatedAt,
	}
}

func (m *memoryStore) DeleteQuiz(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok || q.UserID != userID {
		return ErrNotFound
	}
	delete(m.quizzes, id)
	for aid, a := range m.attempts {
		if a.QuizID == id {
			delete(m.attempts, aid)
		}
	}
	return nil
}

func (m *memoryStore) PutAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = a
	return nil
}

func (m *memoryStore) ListAttempts(_ context.Context, userID string, opts ListOpts) ([]Attempt, Page, error) {
	opts = opts.normalized()
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []Attempt
	for _, a := range m.attempts {
		if a.UserID != userID {
			continue
		}
		if opts.QuizID != "" && a.QuizID != opts.QuizID {
			continue
		}
		if opts.Search != "" && !matchesSearch(opts.Search, a.QuizTitle) {
			continue
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	return paginate(all, opts), NewPage(total, opts.Page, opts.Limit), nil
}

func (m *memoryStore) Dashboard(_ context.Context, userID string) (Dashboard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var d Dashboard
	for _, mat := range m.materials {
		if mat.UserID == userID {
			d.Stats.TotalMaterials++
			d.RecentMaterials = append(d.RecentMaterials, mat)
		}
	}
	sumPct := 0.0
	for _, a := range m.attempts {
		if a.UserID == userID {
			d.Stats.TotalAttempts++
			sumPct += a.Percentage
			d.RecentAttempts = append(d.RecentAttempts, a)
		}
	}
	if d.Stats.TotalAttempts > 0 {
		d.Stats.AverageScore = sumPct / float64(d.Stats.TotalAttempts)
	}
	var quizzes []Quiz
	for _, q := range m.quizzes {
		if q.UserID == userID {
			d.Stats.TotalQuizzes++
			quizzes = append(quizzes, q)
		}
	}

	sort.Slice(d.RecentMaterials, func(i, j int) bool {
		return d.RecentMaterials[i].CreatedAt.After(d.RecentMaterials[j].CreatedAt)
	})
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt) })
	sort.Slice(d.RecentAttempts, func(i, j int) bool {
		return d.RecentAttempts[i].CreatedAt.After(d.RecentAttempts[j].CreatedAt)
	})

	d.RecentMaterials = head(d.RecentMaterials, 3)
	d.RecentAttempts = head(d.RecentAttempts, 5)
	for _, q := range head(quizzes, 3) {
		d.RecentQuizzes = append(d.RecentQuizzes, m.summarizeLocked(q))
	}
	return d, nil
}

func matchesSearch(needle string, fields ...string) bool {
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func paginate[T any](all []T, opts ListOpts) []T {
	off := opts.offset()
	if off >= len(all) {
		return []T{}
	}
	end := off + opts.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[off:end]
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
