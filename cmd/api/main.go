package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/routes"
	"github.com/01moynul/storefront-golang/pkg/config"
	"github.com/01moynul/storefront-golang/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	cfg := config.Load()

	zlog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	app := &handlers.Handlers{
		DB:      db,
		Cart:    cart.NewService(db, zlog),
		Catalog: catalog.NewService(db, zlog),
		Log:     zlog,
	}

	router := routes.SetupRouter(app, []byte(cfg.JWTSecret))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	zlog.Info("starting storefront API server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
