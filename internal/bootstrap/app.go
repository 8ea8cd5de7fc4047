package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-roaster/internal/analysis"
	"resume-roaster/internal/extract"
	"resume-roaster/internal/history"
	"resume-roaster/internal/llm"
	"resume-roaster/internal/llm/gemini"
	"resume-roaster/internal/llm/openai"
	"resume-roaster/internal/roaster"
	"resume-roaster/internal/services/health"
	"resume-roaster/internal/session"
	"resume-roaster/internal/shared/config"
	"resume-roaster/internal/shared/server"
	"resume-roaster/internal/shared/storage/db"
	"resume-roaster/internal/shared/storage/kv"
	kvpostgres "resume-roaster/internal/shared/storage/kv/postgres"
	kvs3 "resume-roaster/internal/shared/storage/kv/s3"
	kvsqlite "resume-roaster/internal/shared/storage/kv/sqlite"
	"resume-roaster/internal/web"
)

// App holds shared dependencies.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	Store      kv.Store
	Analyzer   analysis.Analyzer
	Session    *session.Session
	History    *history.Store
	Controller *roaster.Controller

	closers []func() error
}

// Build wires storage, the analysis client, the controller and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg}

	store, err := app.buildStore(ctx)
	if err != nil {
		return nil, err
	}
	app.Store = store

	llmClient, model, err := buildLLM(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Analyzer = analysis.New(llmClient, cfg.LLMProvider, model)

	sess, err := session.Load(ctx, store)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Session = sess
	app.History = history.NewStore(store)
	app.Controller = roaster.New(app.Analyzer, app.History, sess, roaster.Options{
		AnalysisTimeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
	})

	webHandler, err := web.New(app.Controller, providerDisplayName(cfg.LLMProvider))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		Health:         health.NewService(store, cfg.LocalStoreType, cfg.LLMProvider, llmClient != nil),
		RoasterHandler: roaster.NewHandler(app.Controller),
		ExtractHandler: &extract.Handler{},
		WebHandler:     webHandler,
		CurrentUser:    sess.Current,
	})

	return app, nil
}

// Close releases database handles opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildStore(ctx context.Context) (kv.Store, error) {
	cfg := a.Config
	switch cfg.LocalStoreType {
	case "memory":
		log.Printf("bootstrap: using in-memory store; history is lost on exit")
		return kv.NewMemoryStore(), nil
	case "postgres":
		sqlDB, err := connectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sqlDB.Close)
		return &kvpostgres.Store{DB: sqlDB}, nil
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("LOCAL_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return kvs3.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		store, err := kvsqlite.Open(ctx, cfg.LocalStorePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		log.Printf("bootstrap: using sqlite store at %s", cfg.LocalStorePath)
		return store, nil
	}
}

func connectPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("LOCAL_STORE=postgres requires DATABASE_URL")
	}
	sqlDB, err := db.Connect(ctx, databaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

// buildLLM returns a nil client when no key is configured so every analysis
// fails with a configuration error instead of the server refusing to start.
func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, string, error) {
	apiKey := strings.TrimSpace(cfg.APIKey())
	if apiKey == "" {
		log.Printf("bootstrap: no API key for %s; analyses will fail until one is configured", cfg.LLMProvider)
		return nil, cfg.LLMModel, nil
	}

	switch cfg.LLMProvider {
	case "openai":
		client, err := openai.NewClient(apiKey, cfg.LLMModel, openai.Options{
			Timeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, "", err
		}
		return client, client.Model(), nil
	default:
		client, err := gemini.NewClient(ctx, apiKey, cfg.LLMModel, gemini.Options{})
		if err != nil {
			return nil, "", err
		}
		return client, client.Model(), nil
	}
}

func providerDisplayName(provider string) string {
	if provider == "openai" {
		return "OpenAI"
	}
	return "Gemini"
}
