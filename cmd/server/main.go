package main

import (
	"log"

	_ "dayplan/docs"
	"dayplan/internal/config"
	"dayplan/internal/server"
)

// @title           Dayplan API
// @version         1.0
// @description     API for the daily planning scheduling core: task placement, time-block layout, nightly rollover.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
