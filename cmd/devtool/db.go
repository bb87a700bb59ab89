package main

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/FateProtocol_Go/internal/config"
	"github.com/osse101/FateProtocol_Go/internal/database"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// dbURL prefers DB_URL and otherwise builds the same DSN the server uses
func dbURL() string {
	if u := os.Getenv("DB_URL"); u != "" {
		return u
	}
	cfg := config.Config{
		DBUser:     getEnv("DB_USER", defaultDBUser),
		DBPassword: getEnv("DB_PASSWORD", defaultDBPass),
		DBHost:     getEnv("DB_HOST", defaultDBHost),
		DBPort:     getEnv("DB_PORT", defaultDBPort),
		DBName:     getEnv("DB_NAME", defaultDBName),
	}
	return cfg.GetDBConnString()
}

// redactPassword hides the password of a postgres:// URL for display
func redactPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

// openPool connects with a small pool suited to one-off commands
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := dbURL()
	PrintInfo("Connecting to %s", redactPassword(dsn))
	pool, err := database.NewPool(ctx, dsn, 2, config.DefaultDBMaxConnIdleTime, config.DefaultDBMaxConnLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}
