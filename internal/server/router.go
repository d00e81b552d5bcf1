package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"cryptic-server/internal/handler"
	"cryptic-server/internal/hub"
	"cryptic-server/internal/middleware"
	"cryptic-server/internal/store"
)

type Deps struct {
	Store *store.Store
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	wsHub := hub.New()
	account := &handler.AccountHandler{Store: deps.Store, Hub: wsHub}
	wsHandler := &handler.WebSocketHandler{
		Hub:     wsHub,
		Account: account,
		Router:  handler.NewGameRouter(deps.Store),
	}
	connLimiter := middleware.NewRateLimiter(30, time.Minute)
	r.GET("/ws", middleware.ConnectionLimit(connLimiter), wsHandler.Serve)

	return r
}
