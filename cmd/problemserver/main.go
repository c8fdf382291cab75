// Command problemserver serves the problem catalog API with the built-in
// problems, so the loader has something to talk to.
// Usage: go run ./cmd/problemserver [port]
// Default port: 8000
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/raysh454/promptlab/internal/catalog"
	"github.com/raysh454/promptlab/internal/logging"
	"github.com/raysh454/promptlab/internal/server"
)

func main() {
	cfg := server.DefaultConfig()

	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.ListenAddr = fmt.Sprintf(":%d", port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewStdoutLogger("problemserver")

	storeCfg := catalog.Config{Driver: catalog.DriverMemory}
	if dsn := os.Getenv("PROMPTLAB_CATALOG_DSN"); dsn != "" {
		storeCfg = catalog.Config{Driver: catalog.DriverSQLite, DSN: dsn}
	}
	store, err := catalog.NewStore(ctx, storeCfg, logger)
	if err != nil {
		log.Fatalf("Catalog error: %v", err)
	}
	defer store.Close()

	srv, err := server.NewServer(cfg, store, logger)
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Printf("Problem API:  http://localhost%s/api/problems/%s?mode=guided\n", cfg.ListenAddr, cfg.ProblemID)
	fmt.Printf("Test page:    http://localhost%s/\n", cfg.ListenAddr)
	fmt.Printf("API docs:     http://localhost%s/swagger/index.html\n", cfg.ListenAddr)

	if err := srv.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
	}
}
