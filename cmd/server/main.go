// Package main is the entry point for the LegalLite API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/Shimizu-Technology/legallite-api/internal/config"
	"github.com/Shimizu-Technology/legallite-api/internal/database"
	"github.com/Shimizu-Technology/legallite-api/internal/handlers"
	"github.com/Shimizu-Technology/legallite-api/internal/middleware"
	"github.com/Shimizu-Technology/legallite-api/internal/models"
	"github.com/Shimizu-Technology/legallite-api/internal/router"
	"github.com/Shimizu-Technology/legallite-api/internal/services/render"
	"github.com/Shimizu-Technology/legallite-api/internal/services/risk"
	"github.com/Shimizu-Technology/legallite-api/internal/services/summary"
	"github.com/Shimizu-Technology/legallite-api/internal/services/voice"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 LegalLite API %s starting...", Version)

	// Step 1: Load Configuration (flags override the environment)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	pflag.StringVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP port to listen on")
	pflag.StringVar(&cfg.MigrationsPath, "migrations", cfg.MigrationsPath, "directory holding SQL migrations")
	pflag.StringVar(&cfg.RiskyTermsFile, "risky-terms", cfg.RiskyTermsFile, "YAML file listing risky terms")
	pflag.Parse()

	log.Printf("📋 Config loaded: port=%s, gin_mode=%s, default_mode=%s", cfg.Port, cfg.GinMode, cfg.DefaultMode)

	os.Setenv("GIN_MODE", cfg.GinMode)

	// Step 2: Connect to Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✅ Database connected")

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// Step 3: Create Services
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	summaries := summary.NewRegistry()
	// Constructors return nil when their key is missing; only register real
	// backends so unconfigured modes fall back to the placeholder.
	if s := summary.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel); s != nil {
		summaries.Register(models.ModeOpenAI, s)
	}
	if s := summary.NewHuggingFace(cfg.HFToken, cfg.HFModel); s != nil {
		summaries.Register(models.ModeHuggingFace, s)
	}
	if s := summary.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel); s != nil {
		summaries.Register(models.ModeGemini, s)
	}
	if !summaries.Configured(cfg.DefaultMode) {
		log.Printf("⚠️  Default mode %s has no backend configured; it will use the placeholder", cfg.DefaultMode)
	}

	scanner := risk.NewScanner(risk.DefaultTerms)
	if cfg.RiskyTermsFile != "" {
		scanner, err = risk.LoadScanner(cfg.RiskyTermsFile)
		if err != nil {
			log.Fatalf("❌ Failed to load risky terms: %v", err)
		}
		go func() {
			if err := scanner.Watch(ctx); err != nil {
				log.Printf("⚠️  Risky-term watcher stopped: %v", err)
			}
		}()
	}
	log.Printf("✅ Risky-term scanner ready (%d terms)", len(scanner.Terms()))

	renderer := render.New(cfg.ProductName)

	synth := voice.NewSynthesizer(cfg.OpenAIAPIKey, cfg.TTSModel, cfg.TTSVoice, cfg.AudioDir)
	if synth.IsConfigured() {
		log.Printf("✅ Text-to-speech enabled (audio dir %s)", synth.Dir())
	} else {
		log.Println("⚠️  Text-to-speech disabled (set OPENAI_API_KEY to enable)")
	}

	// Step 4: Setup HTTP Router
	h := handlers.NewHandler(db, summaries, scanner, renderer, synth, cfg.JWTSecret)
	h.DefaultMode = cfg.DefaultMode
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, ctx.Done())
	r := router.Setup(h, rateLimiter, cfg.AllowedOrigins)

	// Step 5: Start the HTTP Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // simplify waits on a remote model and text-to-speech
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 API docs: http://localhost:%s/api/docs", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 6: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

	// Stops the risky-term watcher and the rate limiter's cleanup loop.
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	log.Println("👋 Server stopped. Goodbye!")
}
