/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the loan book server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Wire the book service and API handler
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  Flags take their defaults from environment variables:
  -port            HTTP server port        (LOANBOOK_PORT, default 8080)
  -db              SQLite database path    (LOANBOOK_DB, default loanbook.db)
                   Use ":memory:" for an in-memory database
  -upcoming-days   default due-soon window (LOANBOOK_UPCOMING_DAYS)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/loanbook.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/argsoja/loanbook/api"
	"github.com/argsoja/loanbook/book"
	"github.com/argsoja/loanbook/store/sqlite"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("LOANBOOK_PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("LOANBOOK_DB", "loanbook.db"), "SQLite database path")
	upcomingDays := flag.Int("upcoming-days", envInt("LOANBOOK_UPCOMING_DAYS", 0),
		"default due-soon window in days (0 uses the engine default)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire service and handler
	svc := book.NewService(store, store)
	handler := api.NewHandler(svc)
	handler.Reset = store.Reset
	handler.UpcomingDays = *upcomingDays

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
