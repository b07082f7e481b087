package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cinelist/pkg/config"
	"cinelist/pkg/jwt"
)

// devtoken prints an access token signed with AUTH_JWT_SECRET so the private
// routes can be exercised locally.
func main() {
	var (
		subject string
		ttl     time.Duration
	)

	flag.StringVar(&subject, "sub", "", "User id to put in the sub claim")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}
	if cfg.AppEnv != "local" {
		slog.Error("devtoken only runs with APP_ENV=local")
		os.Exit(1)
	}

	token, err := jwt.NewJWTProvider(cfg.Auth.JWTSecret, ttl).GenerateAccessToken(subject)
	if err != nil {
		slog.Error("cannot sign token", "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
