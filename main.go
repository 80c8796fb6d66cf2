package main

import (
	"log"
	"os"

	"github.com/diaryhub/api-go/config"
	"github.com/diaryhub/api-go/routes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Set up logging to stdout
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("Database: %v", err)
	}

	svc, err := routes.NewServices(db, cfg)
	if err != nil {
		log.Fatalf("Services: %v", err)
	}

	r := gin.New()
	r.Use(gin.LoggerWithWriter(os.Stdout), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	routes.SetupRoutes(r, svc)

	log.Printf("Starting server on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func corsConfig(origins []string) cors.Config {
	conf := cors.DefaultConfig()
	conf.AllowHeaders = append(conf.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
	}
	return conf
}
