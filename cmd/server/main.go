package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/primeo/api/internal/auth"
	"github.com/primeo/api/internal/config"
	"github.com/primeo/api/internal/db"
	"github.com/primeo/api/internal/handlers"
	"github.com/primeo/api/internal/logger"
	"github.com/primeo/api/internal/mailer"
	"github.com/primeo/api/internal/server"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run migrations then exit")
	seed := flag.Bool("seed", false, "seed demo data after migrating")
	flag.Parse()

	// .env est optionnel: en prod les variables viennent de l'environnement.
	_ = godotenv.Load()

	log := logger.Get()
	cfg := config.Load()

	gdb, err := db.ConnectAndMigrate()
	if err != nil {
		log.WithField("error", err.Error()).Fatal("database init failed")
	}
	if *seed || config.ParseBool("DB_SEED", false) {
		if err := db.Seed(gdb); err != nil {
			log.WithField("error", err.Error()).Fatal("seed failed")
		}
	}
	if *migrateOnly {
		log.Info("migrations done, exiting")
		return
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenMinutes)
	mail := mailer.New(cfg.SMTP)
	authH := handlers.NewAuthHandler(gdb, tokens, mail)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.New(cfg, gdb, tokens, authH),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).WithField("env", cfg.Env).Info("serveur démarré")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField("error", err.Error()).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("arrêt du serveur...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithField("error", err.Error()).Error("arrêt forcé")
	}
	log.Info("serveur arrêté")
}
