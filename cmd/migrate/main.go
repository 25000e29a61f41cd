package main

import (
	"flag"
	"os"

	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/logger"
	"go-pos-inventory/internal/migrate"
)

func main() {
	status := flag.Bool("status", false, "print migration status instead of applying")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.App.Env)

	if *status {
		if err := migrate.Status(cfg.DSN()); err != nil {
			log.Error("migration status failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := migrate.Up(cfg.DSN(), log); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}
}
