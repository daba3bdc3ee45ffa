package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

func main() {
	file := flag.String("file", "cmd/seed/testdata/fixtures.yaml", "fixtures YAML file")
	mintFor := flag.String("mint-token", "", "print a bearer token for this user id instead of seeding")
	role := flag.String("role", string(enums.UserRoleCustomer), "role claim for -mint-token")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	if *mintFor != "" {
		if err := mintToken(cfg, *mintFor, *role); err != nil {
			logg.Error(context.Background(), "failed to mint token", err)
			os.Exit(1)
		}
		return
	}

	fixtures, err := readFixtures(*file)
	if err != nil {
		logg.Error(context.Background(), "failed to read fixtures", err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	summary, err := fixtures.Apply(ctx, dbClient.DB())
	if err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"file":             *file,
		"products":         summary.Products,
		"variants":         summary.Variants,
		"coupons":          summary.Coupons,
		"shipping_methods": summary.ShippingMethods,
	})
	logg.Info(ctx, "seed complete")
}

func readFixtures(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFixtures(f)
}

func mintToken(cfg *config.Config, rawUserID, rawRole string) error {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	userRole, err := enums.ParseUserRole(rawRole)
	if err != nil {
		return err
	}
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   userRole,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
