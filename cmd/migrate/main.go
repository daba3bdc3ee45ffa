package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

const usage = "up|down|redo|status|version|create|validate|list"

func main() {
	cmd := flag.String("cmd", "up", "migration command: "+usage)
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory for create and validate")
	name := flag.String("name", "", "migration name for -cmd=create")
	target := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	timeout := flag.Duration("timeout", 5*time.Minute, "deadline for database commands")
	flag.Parse()

	// file-only commands run without config so they work on a bare checkout
	switch *cmd {
	case "create":
		if *name == "" {
			fail("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fail("create migration: %v", err)
		}
		fmt.Println("created", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fail("validate migrations: %v", err)
		}
		fmt.Println("migrations valid")
		return
	case "list":
		versions, err := migrate.Versions()
		if err != nil {
			fail("list migrations: %v", err)
		}
		for _, v := range versions {
			fmt.Println(v)
		}
		return
	case "up", "down", "redo", "status", "version":
	default:
		fail("unknown -cmd %q (want %s)", *cmd, usage)
	}
	if *cmd == "version" && *target == "" {
		fail("missing -version for -cmd=version")
	}

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.LogFormat == "console",
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "failed to obtain sql handle", err)
		os.Exit(1)
	}

	if *cmd == "version" {
		err = migrate.MigrateToVersion(ctx, sqlDB, *target)
	} else {
		err = migrate.Run(ctx, sqlDB, *cmd)
	}
	if err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migration complete")
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
