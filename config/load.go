package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Load() App {
	// .env is a dev convenience, absence is fine
	_ = godotenv.Load()

	cfg := App{
		Port:            getenv("APP_PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       getenv("JWT_SECRET", "local_dev_secret"),
		Env:             getenv("APP_ENV", "dev"),
		AccessTTLHours:  getenvInt("ACCESS_TTL_HOURS", 1),
		RefreshTTLHours: getenvInt("REFRESH_TTL_HOURS", 168),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("bad int env, using default", "key", k, "value", v)
		return def
	}
	return n
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
