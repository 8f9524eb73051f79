package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"opname/infrastructure/audit"
	"opname/infrastructure/auth"
	"opname/infrastructure/cache"
	"opname/infrastructure/config"
	httpserver "opname/infrastructure/http"
	"opname/infrastructure/sqlite"
)

func main() {
	cfg := config.Load()

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(context.Background(), db, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	sessionCache := cache.NewSessionCache()
	auditSvc := audit.NewService()

	var provider auth.Provider
	switch cfg.AuthMode {
	case config.AuthModeToken:
		provider = auth.NewTokenProvider(db, sessionCache)
	default:
		provider = auth.NewFixedProvider()
		slog.Warn("auth disabled, all requests run as the fixed operator", slog.String("auth_mode", cfg.AuthMode))
	}

	server := httpserver.NewServer(cfg.Addr, db, sessionCache, provider, auditSvc, cfg.CORSOrigins)
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	log.Printf("opname listening on %s", cfg.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := server.Stop(); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}
