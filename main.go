package main

import (
	"net/http"

	"treasury/internal/config"
	"treasury/internal/logger"
	"treasury/internal/routes"
)

func main() {
	cfg := config.New()
	log := logger.New()

	db := initDB(cfg.MySQLDSN())
	engine := routes.Register(db, log)

	srv := &http.Server{Addr: cfg.Addr, Handler: engine}
	log.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
