package main

import (
	"context"
	"log"
	"os"

	"github.com/example/smart-ai/config"
	"github.com/example/smart-ai/modules/api"
	"github.com/example/smart-ai/modules/auth"
	"github.com/example/smart-ai/modules/history"
	"github.com/example/smart-ai/modules/qa"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== Smart AI Question Answering ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	authModule := auth.NewModule(auth.Config{
		JWT: auth.JWTConfig{
			SecretKey:      cfg.SecretKey,
			AccessTokenTTL: cfg.AccessTokenTTL,
			ClockSkew:      cfg.ClockSkew,
		},
		BcryptCost:   cfg.BcryptCost,
		DBPath:       cfg.UsersDBPath,
		DatabaseURL:  cfg.DatabaseURL,
		StoreTimeout: cfg.StoreTimeout,
	}, logger)

	historyModule := history.NewModule(history.Config{
		DBPath:       cfg.HistoryDBPath,
		StoreTimeout: cfg.StoreTimeout,
	}, logger)

	qaModule, err := qa.NewModule(qa.Config{
		Inference: qa.InferenceConfig{
			Endpoint:     cfg.ModelEndpoint,
			Model:        cfg.ModelID,
			Token:        cfg.ModelToken,
			MaxNewTokens: cfg.ModelMaxNewTokens,
			Timeout:      cfg.ModelTimeout,
		},
		Pool: qa.PoolConfig{
			NumWorkers:     cfg.Workers,
			QueueSize:      cfg.QueueSize,
			ProcessTimeout: cfg.ModelTimeout,
		},
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create qa module: %v", err)
	}

	apiModule := api.NewModule(api.Config{
		Addr:             cfg.HTTPAddr,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		RequireAuthForQA: cfg.RequireAuthForQA,
		AskTimeout:       cfg.ModelTimeout + cfg.StoreTimeout,
	}, authModule, qaModule, logger)

	// Independent modules first, then dependent modules
	if err := app.Register(authModule); err != nil {
		log.Fatalf("Failed to register auth module: %v", err)
	}
	if err := app.Register(historyModule); err != nil {
		log.Fatalf("Failed to register history module: %v", err)
	}
	if err := app.Register(qaModule); err != nil {
		log.Fatalf("Failed to register qa module: %v", err)
	}
	if err := app.Register(apiModule); err != nil {
		log.Fatalf("Failed to register api module: %v", err)
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("Model: %s (max %d new tokens, %d workers)", cfg.ModelID, cfg.ModelMaxNewTokens, cfg.Workers)
	log.Println("")
	log.Printf("REST API Endpoints (%s):", cfg.HTTPAddr)
	log.Println("  GET    /health    - Health check")
	log.Println("  POST   /register  - Register a new user (JSON)")
	log.Println("  POST   /token     - Login with form credentials, returns bearer token")
	if cfg.RequireAuthForQA {
		log.Println("  POST   /ask       - Ask a question (requires Bearer token)")
		log.Println("  GET    /history   - List answered questions (requires Bearer token)")
	} else {
		log.Println("  POST   /ask       - Ask a question")
		log.Println("  GET    /history   - List answered questions")
	}
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
