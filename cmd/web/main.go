package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"aprovado/internal/app"
	"aprovado/internal/cache"
	"aprovado/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := app.LoadConfig()

	dbConn, err := db.OpenPostgresWithConfig(context.Background(), cfg.DBDSN, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifeMins) * time.Minute,
	})
	if err != nil {
		log.Printf("database error: %v", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	var cacheStore cache.Cache = cache.NewMemoryCache()
	if cfg.RedisAddr != "" {
		client, err := cache.OpenRedis(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("redis error: %v", err)
			os.Exit(1)
		}
		defer client.Close()
		cacheStore = cache.NewRedisCache(client)
	}

	r := app.NewRouter(cfg, dbConn, cacheStore)

	log.Printf("aprovado web listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
