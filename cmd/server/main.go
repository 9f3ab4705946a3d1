package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huxiangculture/platform/internal/bootstrap"
	"github.com/huxiangculture/platform/internal/config"
	"github.com/huxiangculture/platform/internal/server"
	"github.com/huxiangculture/platform/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
		if err := bootstrap.SeedSampleContent(db); err != nil {
			log.Fatalf("failed to seed sample content: %v", err)
		}
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.New(cfg, db, redisClient)

	log.Printf("listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// connectRedis returns nil when REDIS_URL is unset or the server is
// unreachable; the post cooldown limiter is simply disabled in that case.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, post rate limiting disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("invalid REDIS_URL, post rate limiting disabled: %v", err)
		return nil
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable, post rate limiting disabled: %v", err)
		return nil
	}

	return client
}
