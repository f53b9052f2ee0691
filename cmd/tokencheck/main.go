// Command tokencheck verifies a token against a published JWKS the way a
// third-party service would, then prints its claims.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"league-platform/internal/logger"
	"league-platform/internal/token"
)

func main() {
	jwksURL := flag.String("jwks", "http://localhost:8080/.well-known/jwks.json", "JWKS endpoint URL")
	raw := flag.String("token", "", "token to verify (read from stdin when empty)")
	issuer := flag.String("issuer", token.Issuer, "expected iss claim")
	timeout := flag.Duration("timeout", 10*time.Second, "JWKS fetch timeout")
	flag.Parse()

	slog.SetDefault(slog.New(logger.NewPrettyHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(*jwksURL, *raw, *issuer, *timeout); err != nil {
		slog.Error("token check failed", "error", err)
		os.Exit(1)
	}
}

func run(jwksURL string, raw string, issuer string, timeout time.Duration) error {
	if strings.TrimSpace(raw) == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read token from stdin: %w", err)
		}
		raw = line
	}
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return errors.New("no token given")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:            ctx,
		RefreshTimeout: timeout,
		RefreshErrorHandler: func(err error) {
			slog.Warn("jwks refresh failed", "url", jwksURL, "error", err)
		},
	})
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer jwks.EndBackground()

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, jwks.Keyfunc,
		jwt.WithValidMethods([]string{string(token.RS256)}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("verify token: %w", err)
	}

	slog.Info("token verified", "kid", parsed.Header["kid"], "user_id", claims["user_id"])

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(claims)
}
