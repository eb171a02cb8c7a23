package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	auth "github.com/quizplanner/quizplanner/internal/auth/middleware"
	"github.com/quizplanner/quizplanner/internal/quiz"
	"github.com/quizplanner/quizplanner/internal/storage"
)

// maxUploadBytes caps study-material file uploads.
const maxUploadBytes = 5 << 20

// POST /api/materials  { "title": "...", "content": "...", "description": "...", "tags": [...] }
func CreateMaterialHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       string   `json:"title"`
			Content     string   `json:"content"`
			Description string   `json:"description"`
			Tags        []string `json:"tags"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		title := strings.TrimSpace(req.Title)
		if title == "" || req.Content == "" {
			http.Error(w, "title and content are required", http.StatusBadRequest)
			return
		}

		m := quiz.Material{
			ID:          uuid.NewString(),
			UserID:      auth.SubjectFromContext(r.Context()),
			Title:       title,
			Description: strings.TrimSpace(req.Description),
			Content:     req.Content,
			Tags:        req.Tags,
			CreatedAt:   time.Now(),
		}
		if err := store.CreateMaterial(r.Context(), m); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(m)
	}
}

// POST /api/materials/upload  multipart: file=<text file>, title=..., description=...
// The uploaded bytes become the material content; the original file is kept
// in the blob store.
func UploadMaterialHandler(store quiz.Store, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read file: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(content) == 0 {
			http.Error(w, "empty file", http.StatusBadRequest)
			return
		}

		userID := auth.SubjectFromContext(r.Context())
		id := uuid.NewString()
		key := path.Join("materials", userID, id+"-"+path.Base(hdr.Filename))
		if _, err := bs.Put(key, strings.NewReader(string(content))); err != nil {
			http.Error(w, "store file: "+err.Error(), http.StatusInternalServerError)
			return
		}

		title := strings.TrimSpace(r.FormValue("title"))
		if title == "" {
			title = hdr.Filename
		}
		m := quiz.Material{
			ID:          id,
			UserID:      userID,
			Title:       title,
			Description: strings.TrimSpace(r.FormValue("description")),
			Content:     string(content),
			CreatedAt:   time.Now(),
		}
		if err := store.CreateMaterial(r.Context(), m); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(m)
	}
}

// GET /api/materials
func ListMaterialsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListMaterials(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"materials": list})
	}
}

// GET /api/materials/{materialID}
func GetMaterialHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := store.GetMaterial(r.Context(),
			auth.SubjectFromContext(r.Context()), chi.URLParam(r, "materialID"))
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "material not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(m)
	}
}

// PUT /api/materials/{materialID}
func UpdateMaterialHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       *string   `json:"title"`
			Content     *string   `json:"content"`
			Description *string   `json:"description"`
			Tags        *[]string `json:"tags"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		userID := auth.SubjectFromContext(r.Context())
		m, err := store.GetMaterial(r.Context(), userID, chi.URLParam(r, "materialID"))
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "material not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				http.Error(w, "title cannot be empty", http.StatusBadRequest)
				return
			}
			m.Title = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			m.Content = *req.Content
		}
		if req.Description != nil {
			m.Description = strings.TrimSpace(*req.Description)
		}
		if req.Tags != nil {
			m.Tags = *req.Tags
		}
		if err := store.UpdateMaterial(r.Context(), m); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(m)
	}
}

// DELETE /api/materials/{materialID}
func DeleteMaterialHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteMaterial(r.Context(),
			auth.SubjectFromContext(r.Context()), chi.URLParam(r, "materialID"))
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "material not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "material deleted"})
	}
}
