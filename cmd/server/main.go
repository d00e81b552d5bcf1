package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"cryptic-server/internal/config"
	"cryptic-server/internal/miner"
	"cryptic-server/internal/server"
	"cryptic-server/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	gin.SetMode(cfg.GinMode)

	db, err := store.OpenDB(cfg.DatabaseFile)
	if err != nil {
		log.Fatal(err)
	}
	st := store.New(db)

	accruer := &miner.Accruer{Store: st, Interval: cfg.MinerTick}
	go accruer.Run(context.Background())

	router := server.NewRouter(server.Deps{Store: st})
	log.Printf("listening on %s", fmt.Sprintf(":%d", cfg.Port))
	log.Fatal(server.Run(cfg, router))
}
