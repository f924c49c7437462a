package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"case-simulator/internal/auth"
	"case-simulator/internal/cases"
	"case-simulator/internal/config"
	"case-simulator/internal/core"
	"case-simulator/internal/export"
	httpserver "case-simulator/internal/http"
	"case-simulator/internal/llm"
	"case-simulator/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	catalog := cases.NewCatalog()
	gate := auth.NewGate(cfg.ValidUserIDs)

	// Session store: in-memory by default, Postgres when DATABASE_URL is set.
	var store session.Store
	if cfg.DatabaseURL != "" {
		dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer dbConn.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := dbConn.PingContext(pingCtx); err != nil {
			cancel()
			log.Fatalf("failed to ping database: %v", err)
		}
		cancel()
		store, err = session.NewPostgresStore(context.Background(), dbConn, catalog)
		if err != nil {
			log.Fatalf("failed to initialize postgres session store: %v", err)
		}
		log.Println("Using Postgres session store")
	} else {
		store = session.NewMemoryStore(catalog)
		log.Println("Using in-memory session store (sessions are ephemeral)")
	}

	llmClient := llm.NewOpenAIClient(cfg.APIKey, cfg.Model)
	chatService := core.NewChatService(llmClient)
	summarizer := core.NewSummarizer(llmClient)

	var uploader export.Uploader
	if cfg.DriveServiceAccountKey != "" {
		u, err := export.NewDriveUploader(context.Background(), []byte(cfg.DriveServiceAccountKey), cfg.DriveFolderID)
		if err != nil {
			// Export is best-effort; run without it rather than refusing to
			// start.
			log.Printf("Warning: could not initialize Google Drive uploader: %v", err)
		} else {
			uploader = u
		}
	} else {
		log.Println("No Google Drive credentials configured; exports disabled")
	}

	server := httpserver.NewServer(gate, catalog, store, chatService, summarizer, uploader)
	router := httpserver.NewRouter(server)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("Server exited gracefully")
}
