// Command tokengen issues bearer tokens for the generation API using the
// server's auth.jwt_secret.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cheerforge/cheerforge/internal/config"
	"github.com/cheerforge/cheerforge/internal/service/auth"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	subject := flag.String("subject", "", "token subject, e.g. a client name")
	flag.Parse()

	token, err := issue(*configPath, *subject)
	if err != nil {
		log.Fatalf("tokengen: %v", err)
	}
	fmt.Fprintln(os.Stdout, token)
}

func issue(configPath, subject string) (string, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	if !cfg.Auth.Enabled() {
		return "", fmt.Errorf("auth.jwt_secret is not configured")
	}

	svc, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return "", err
	}
	return svc.GenerateToken(context.Background(), subject)
}
