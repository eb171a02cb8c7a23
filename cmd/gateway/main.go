package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	api "github.com/quizplanner/quizplanner/internal/api/http"
	auth "github.com/quizplanner/quizplanner/internal/auth/middleware"
	"github.com/quizplanner/quizplanner/internal/config"
	"github.com/quizplanner/quizplanner/internal/db"
	"github.com/quizplanner/quizplanner/internal/engine"
	"github.com/quizplanner/quizplanner/internal/quiz"
	"github.com/quizplanner/quizplanner/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store open failed: %v", err)
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	eng := engine.NewFromConfig(engine.RemoteConfig{
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		BaseURL: cfg.LLMBaseURL,
		Timeout: cfg.LLMTimeout,
	})

	authSvc := auth.NewAuthService(cfg.JWTSecret, cfg.JWTTTL)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"service":"quizplanner","status":"ok"}`))
	})
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Post("/api/auth/register", api.RegisterHandler(store))
	r.Post("/api/auth/login", api.LoginHandler(store, authSvc))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Get("/api/auth/me", api.MeHandler(store))
		pr.Put("/api/auth/update", api.UpdateUserHandler(store))

		pr.Route("/api/materials", func(mr chi.Router) {
			mr.Post("/", api.CreateMaterialHandler(store))
			mr.Post("/upload", api.UploadMaterialHandler(store, bs))
			mr.Get("/", api.ListMaterialsHandler(store))
			mr.Get("/{materialID}", api.GetMaterialHandler(store))
			mr.Put("/{materialID}", api.UpdateMaterialHandler(store))
			mr.Delete("/{materialID}", api.DeleteMaterialHandler(store))
		})

		pr.Route("/api/quizzes", func(qr chi.Router) {
			qr.Post("/generate", api.GenerateQuizHandler(store, eng))
			qr.Get("/", api.ListQuizzesHandler(store))
			qr.Get("/dashboard", api.DashboardHandler(store))
			qr.Get("/attempts", api.ListAttemptsHandler(store))
			qr.Get("/attempts/{quizID}", api.QuizAttemptsHandler(store))
			qr.Get("/{quizID}", api.GetQuizHandler(store))
			qr.Delete("/{quizID}", api.DeleteQuizHandler(store))
			qr.Post("/{quizID}/attempt", api.SubmitAttemptHandler(store))
		})
	})

	log.Printf("listening on %s (store=%s)", cfg.HTTPAddr, cfg.StoreDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func openStore(ctx context.Context, cfg config.Config) (quiz.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return quiz.NewInMemoryStore(), nil
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, err
		}
		return quiz.NewMongoStore(client.Database(cfg.MongoDB)), nil
	default:
		dbh, err := db.Open(ctx, db.Driver(cfg.StoreDriver), cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return quiz.NewSQLStore(dbh), nil
	}
}
