package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailscope/internal/analyzer"
	"mailscope/internal/cache"
	"mailscope/internal/clean"
	"mailscope/internal/config"
	"mailscope/internal/lookup"
	"mailscope/internal/proxy"
	"mailscope/internal/queue"
	"mailscope/internal/store"
)

// app holds the wired services the handlers depend on.
type app struct {
	engine *analyzer.Engine
	queue  *queue.Client
}

func main() {
	cfg, err := config.Load(os.Getenv("MAILSCOPE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	q, err := queue.Connect(cfg.RedisAddr)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}
	if err := store.Init(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	log.Println("Connected to PostgreSQL, migrations applied")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resultCache := cache.New()
	resultCache.StartCleanup(ctx, 5*time.Minute)

	client := proxy.NewClient(cfg.Proxy)
	if client.IsProxyEnabled() {
		log.Printf("Proxy routing enabled (%s:%d)", cfg.Proxy.Host, cfg.Proxy.Port)
	} else {
		log.Println("Proxy routing disabled, using direct connections")
	}

	mode := lookup.InertDefault
	if cfg.Analysis.PresenceMode == "live" {
		mode = lookup.LiveProbe
	}
	avatars := lookup.NewAvatarCollector(client, resultCache)
	presence := lookup.NewPresenceCollector(
		mode,
		lookup.DefaultCatalog,
		client,
		cfg.Analysis.MaxProbes,
		time.Duration(cfg.Analysis.ProbeDelayMs)*time.Millisecond,
		resultCache,
	)

	a := &app{
		engine: analyzer.NewEngine(avatars, presence, cfg.Analysis.Workers),
		queue:  q,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", enableCORS(requireAPIKey(a.analyzeHandler)))
	mux.HandleFunc("/upload", enableCORS(requireAPIKey(a.uploadHandler)))
	mux.HandleFunc("/status", enableCORS(requireAPIKey(statusHandler)))
	mux.HandleFunc("/results", enableCORS(requireAPIKey(resultsHandler)))
	mux.HandleFunc("/report", enableCORS(requireAPIKey(reportHandler)))
	mux.HandleFunc("/info", enableCORS(infoHandler))

	server := &http.Server{
		Addr:         ":8080",
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Println("mailscope API listening on :8080")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-quit
	log.Println("Shutdown signal received, draining in-flight requests...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}
	log.Println("Server shut down cleanly")
}

// enableCORS sets permissive CORS headers; restrict the origin before
// exposing this beyond an internal network.
func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

// analyzeHandler runs a synchronous single-email analysis.
func (a *app) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "Missing 'email' parameter", http.StatusBadRequest)
		return
	}

	cleaned := clean.Clean([]string{email})
	if len(cleaned) == 0 {
		http.Error(w, "Malformed email", http.StatusBadRequest)
		return
	}

	profile := a.engine.AnalyzeOne(r.Context(), cleaned[0])

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(profile); err != nil {
		log.Printf("Error encoding /analyze response for %s: %v", email, err)
	}
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	guide := map[string]interface{}{
		"service": "mailscope",
		"version": "1.0.0",
		"capabilities": []string{
			"Avatar profile collection (proxy-routed)",
			"Structural pattern analysis",
			"Cross-service account presence",
			"Persona segmentation",
			"Security risk scoring",
			"Batch analysis with HTML reporting",
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(guide); err != nil {
		log.Printf("Error encoding /info response: %v", err)
	}
}
