package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"goexpect/adapters/llm"
	"goexpect/adapters/memory"
	"goexpect/adapters/postgres"
	"goexpect/adapters/source"
	"goexpect/app"
	"goexpect/domain/rules"
	"goexpect/internal/suggest"
	"goexpect/models"
	"goexpect/ports"
	"goexpect/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[API] no .env file loaded: %v", err)
	}

	registry := rules.NewRegistry()
	resolver := source.NewResolver()

	aiConfig := models.DefaultAIConfig()
	judge := llm.NewJudgeAdapter(aiConfig)
	suggester := llm.NewSuggesterAdapter(aiConfig, registry, suggest.NewHeuristic())

	recorder := setupRecorder()
	service := app.NewValidationService(resolver, judge, recorder, registry)

	api := ui.NewApp(service, resolver, suggester, recorder)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := api.Start(ui.Config{Port: port}); err != nil {
		log.Fatalf("[API] server failed: %v", err)
	}
}

// setupRecorder connects to DATABASE_URL when set, falling back to the
// in-memory store for local development.
func setupRecorder() ports.RunRecorder {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Printf("[API] DATABASE_URL not set, runs are kept in memory")
		return memory.NewRunRecorder()
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Fatalf("[API] failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("[API] %v", err)
	}

	return postgres.NewRunRepository(db)
}
