package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"stockledger/internal/config"
	"stockledger/internal/infrastructure/logger"
	"stockledger/internal/infrastructure/mysql"
	"stockledger/internal/ledger"
	"stockledger/internal/middleware"
	productrepo "stockledger/internal/product/repository"
	"stockledger/internal/seed"
	userrepo "stockledger/internal/user/repository"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to the config file")
	password := flag.String("password", "12345678", "password for seeded users")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed tokens")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, "stockledger-seed")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := mysql.Migrate(ctx, db); err != nil {
		zapLogger.Fatal("migrating schema", zap.Error(err))
	}

	ledgerModule := ledger.NewModule(db, cfg, nil, nil, zapLogger)
	seeder := seed.NewSeeder(
		userrepo.NewMySQLUserRepository(db),
		productrepo.NewMySQLRepository(db),
		ledgerModule.Engine,
		*password,
		zapLogger,
	)

	result, err := seeder.Run(ctx)
	if err != nil {
		zapLogger.Fatal("seeding failed", zap.Error(err))
	}
	zapLogger.Info("seeding finished",
		zap.Int("usersCreated", result.CreatedUsers),
		zap.Int("productsCreated", result.CreatedProducts),
	)

	if cfg.Auth.JWTSecret == "" {
		zapLogger.Warn("auth.jwt_secret is empty, not printing tokens")
		return
	}

	for _, u := range result.Users {
		token, err := middleware.SignToken([]byte(cfg.Auth.JWTSecret), middleware.Actor{ID: u.ID, Name: u.Name, Role: u.Role}, jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(*tokenTTL)),
		})
		if err != nil {
			zapLogger.Fatal("signing token", zap.String("email", u.Email), zap.Error(err))
		}
		fmt.Printf("%-8s %-22s %s\n", u.Role, u.Email, token)
	}
}
