package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailscope/internal/analyzer"
	"mailscope/internal/cache"
	"mailscope/internal/config"
	"mailscope/internal/lookup"
	"mailscope/internal/proxy"
	"mailscope/internal/queue"
	"mailscope/internal/store"
	"mailscope/internal/worker"
)

func main() {
	log.Println("Starting mailscope worker...")

	cfg, err := config.Load(os.Getenv("MAILSCOPE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	q, err := queue.Connect(cfg.RedisAddr)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis")

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}
	if err := store.Init(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	log.Println("Connected to PostgreSQL")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := buildEngine(ctx, cfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-quit
		cancel()
	}()

	worker.Run(ctx, q, engine)
}

// buildEngine wires the proxy client, collectors and shared cache into an
// analysis engine.
func buildEngine(ctx context.Context, cfg *config.Config) *analyzer.Engine {
	client := proxy.NewClient(cfg.Proxy)
	if client.IsProxyEnabled() {
		log.Printf("Proxy routing enabled (%s:%d, rotation every %dms)",
			cfg.Proxy.Host, cfg.Proxy.Port, cfg.Proxy.RotationIntervalMs)
	} else {
		log.Println("Proxy routing disabled, using direct connections")
	}

	resultCache := cache.New()
	resultCache.StartCleanup(ctx, 5*time.Minute)

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

	return analyzer.NewEngine(avatars, presence, cfg.Analysis.Workers)
}
