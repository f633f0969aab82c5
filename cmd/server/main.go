// Package main provides the entry point for the takeforge status server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/courtside-ml/takeforge/internal/api"
	"github.com/courtside-ml/takeforge/pkg/logging"
	"github.com/courtside-ml/takeforge/pkg/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to YAML pipeline config (defaults apply when empty)")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.SetupLogger(config.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup logging: %v\n", err)
		os.Exit(1)
	}
	logger := logging.GetLogger("server")

	app := fiber.New(fiber.Config{
		AppName:      "takeforge",
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(fiberlogger.New())

	api.SetupRoutes(app, api.NewHandlers(config))

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	logger.Info().Str("addr", addr).Msg("Status server listening")
	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped")
	}
}

func loadConfig(path string) (*pipeline.PipelineConfig, error) {
	if path == "" {
		return pipeline.DefaultPipelineConfig(), nil
	}
	return pipeline.LoadPipelineConfig(path)
}
