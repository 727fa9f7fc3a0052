// Command tool prepares a development database for the report service and
// mints bearer tokens for local testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/report-service/internal/config"
	"github.com/baechuer/report-service/internal/infrastructure/db/sqlstore"
	"github.com/baechuer/report-service/internal/logger"
)

func main() {
	schema := flag.Bool("schema", false, "create the report tables if missing")
	seed := flag.Bool("seed", false, "replace table contents with the dev fixture")
	token := flag.Bool("token", false, "print a one-hour bearer token signed with JWT_SECRET")
	flag.Parse()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("config load failed")
	}

	if *token {
		s, err := mintToken(cfg.JWTSecret, cfg.JWTIssuer, time.Hour)
		if err != nil {
			zlog.Fatal().Err(err).Msg("token")
		}
		fmt.Println(s)
	}

	if !*schema && !*seed {
		if !*token {
			flag.Usage()
			os.Exit(2)
		}
		return
	}

	if cfg.AppEnv != "dev" {
		zlog.Fatal().Str("app_env", cfg.AppEnv).Msg("refusing to touch a non-dev database")
	}

	db, err := config.NewDB(cfg.DBDriver, cfg.DatabaseURL, 1, 1)
	if err != nil {
		zlog.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *schema {
		if err := sqlstore.ApplySchema(ctx, db, cfg.DBDriver); err != nil {
			zlog.Fatal().Err(err).Msg("apply schema failed")
		}
		zlog.Info().Str("driver", cfg.DBDriver).Msg("schema applied")
	}
	if *seed {
		f := sqlstore.DevFixture()
		if err := f.Load(ctx, db, cfg.DBDriver); err != nil {
			zlog.Fatal().Err(err).Msg("seed failed")
		}
		zlog.Info().
			Int("roles", len(f.Roles)).
			Int("users", len(f.Users)).
			Int("profiles", len(f.Profiles)).
			Int("logins", len(f.Logins)).
			Msg("seeded")
	}
}

func mintToken(secret, issuer string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET is empty")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"uid":  uuid.NewString(),
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
