/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the supply engine server. Handles configuration,
  dependency injection, seeding, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Seed opening cash and sample inventory on first run
  4. Wire the ledger engines and the request pipeline
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8080)
  -db       SQLite database path (default: supply.db)
            Use ":memory:" for in-memory database
  -timeout  Per-capability call timeout (default: 30s)
  -binding  Treat quotes as binding: the recorded sale price must match
            the quoted total (default: off, quotes are advisory)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/supply.db"

  # Run with in-memory database and binding quotes
  ./server -db=":memory:" -binding

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/difflin/supply-engine/api"
	"github.com/difflin/supply-engine/catalog"
	"github.com/difflin/supply-engine/ledger"
	"github.com/difflin/supply-engine/rulebased"
	"github.com/difflin/supply-engine/store/sqlite"
	"github.com/difflin/supply-engine/workflow"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "supply.db", "SQLite database path")
	timeout := flag.Duration("timeout", 30*time.Second, "per-capability call timeout")
	binding := flag.Bool("binding", false, "treat quotes as binding on the recorded sale price")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	// Seed opening cash and sample inventory on first run
	writer := ledger.NewLedger(store)
	ctx := context.Background()
	seeded, err := store.HasReferenceItems(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to inspect database")
	}
	if !seeded {
		if err := catalog.Seed(ctx, writer, store, catalog.DefaultCoverage, catalog.DefaultSeed); err != nil {
			log.Fatal().Err(err).Msg("failed to seed database")
		}
		log.Info().Msg("seeded opening cash and sample inventory")
	}

	// Wire engines and pipeline
	queries := ledger.NewQueryEngine(store)
	reports := ledger.NewReportEngine(queries, store, store)
	coord := workflow.NewCoordinator(rulebased.Capabilities(), writer, queries, reports, store, workflow.Config{
		CapabilityTimeout: *timeout,
		BindingQuotes:     *binding,
		Logger:            log,
	})

	handler := api.NewHandler(coord, queries, reports, writer, store)
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
		log.Info().Int("port", *port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
