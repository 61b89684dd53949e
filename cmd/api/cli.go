package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/israelsanchezdev/entrepreneur-dashboard/db"
	"github.com/israelsanchezdev/entrepreneur-dashboard/internal/version"
)

const (
	exitOK      = 0
	exitUsage   = 2
	exitConfig  = 3
	exitMigrate = 4
)

var (
	migrateRunner = realMigrateRunner
	osExit        = os.Exit
)

func handleCLICommand(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "migrate":
		code := runMigrate(args[1:])
		osExit(code)
		return true
	case "version", "-v", "--version":
		fmt.Println(version.String())
		osExit(exitOK)
		return true
	case "help", "-h", "--help":
		printHelp()
		osExit(exitOK)
		return true
	default:
		return false
	}
}

func runMigrate(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "missing migrate subcommand (up|down|status)")
		return exitUsage
	}
	subcmd := args[0]
	switch subcmd {
	case "up", "down", "status":
	default:
		fmt.Fprintf(os.Stderr, "unknown migrate subcommand: %s\n", subcmd)
		return exitUsage
	}

	_ = godotenv.Load()
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "config error: DATABASE_URL is empty")
		return exitConfig
	}

	if migrateRunner == nil {
		migrateRunner = realMigrateRunner
	}

	if err := migrateRunner(subcmd, databaseURL); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s failed: %v\n", subcmd, err)
		return exitMigrate
	}
	return exitOK
}

func realMigrateRunner(subcmd, databaseURL string) error {
	ctx := context.Background()
	switch subcmd {
	case "up":
		return db.MigrateUp(ctx, databaseURL)
	case "down":
		return db.MigrateDown(ctx, databaseURL)
	case "status":
		return db.MigrateStatus(ctx, databaseURL)
	default:
		return fmt.Errorf("unsupported migrate subcommand %q", subcmd)
	}
}

func printHelp() {
	fmt.Println("Founder Tracker API")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  api                   Start API server")
	fmt.Println("  api migrate up        Apply all pending migrations")
	fmt.Println("  api migrate down      Roll back one migration")
	fmt.Println("  api migrate status    Show migration status")
	fmt.Println("  api version           Print build version")
}
