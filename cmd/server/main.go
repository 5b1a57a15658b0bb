// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/b3computer/zettel-mcp/internal/config"
	"github.com/b3computer/zettel-mcp/internal/database"
	"github.com/b3computer/zettel-mcp/internal/git"
	"github.com/b3computer/zettel-mcp/internal/locking"
	"github.com/b3computer/zettel-mcp/internal/rebuild"
	"github.com/b3computer/zettel-mcp/internal/server"
	"github.com/b3computer/zettel-mcp/internal/store"
	"github.com/b3computer/zettel-mcp/pkg/scheduler"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Version is set at build time via ldflags (e.g. goreleaser -X main.Version={{.Version}}).
var Version string

func main() {
	// CRITICAL: MCP servers must ONLY output JSON-RPC to stdout
	// Redirect all logging to stderr
	log.SetOutput(os.Stderr)

	rebuildDB := flag.Bool("rebuilddb", false, "Rebuild the database index from the card store")
	forceRebuild := flag.Bool("force", false, "Force rebuild (requires --rebuilddb)")
	dbType := flag.String("db-type", "", "Database type (sqlite or postgres)")
	dbPath := flag.String("db-path", "", "Database path (for sqlite)")
	dbDSN := flag.String("db-dsn", "", "Database DSN (for postgres)")
	storePath := flag.String("store-path", "", "Card store root directory")
	configPath := flag.String("config", "", "Path to config file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Zettel MCP Server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Server Mode:\n")
		fmt.Fprintf(os.Stderr, "  %s                    Start MCP server (stdio)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nDatabase Rebuild:\n")
		fmt.Fprintf(os.Stderr, "  %s --rebuilddb          Rebuild the index from card files\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --rebuilddb --force  Rebuild and overwrite existing data\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  DB_TYPE              Database type (sqlite or postgres)\n")
		fmt.Fprintf(os.Stderr, "  DB_PATH              SQLite database path\n")
		fmt.Fprintf(os.Stderr, "  DB_DSN               PostgreSQL connection string\n")
		fmt.Fprintf(os.Stderr, "  ZETTEL_STORE_PATH    Card store root directory\n")
	}

	flag.Parse()

	if *forceRebuild && !*rebuildDB {
		log.Fatal("ERROR: --force can only be used with --rebuilddb")
	}

	if *rebuildDB {
		log.Println("Starting zettelkasten index rebuild...")
	} else {
		log.Println("Starting Zettel MCP Server...")
	}

	// Load configuration
	var cfg *config.Config
	var err error

	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
		if err != nil {
			log.Printf("Warning: Failed to load config from %s: %v", *configPath, err)
			log.Println("Using defaults")
			cfg = config.DefaultConfig()
		} else {
			log.Printf("Loaded configuration from %s", *configPath)
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			log.Printf("Warning: Failed to load default config: %v", err)
			log.Println("Using built-in defaults")
			cfg = config.DefaultConfig()
		} else {
			log.Printf("Loaded configuration from ~/%s/%s", config.DefaultConfigDir, config.DefaultConfigFile)
		}
	}

	applyEnvOverrides(cfg)
	applyCLIOverrides(cfg, *dbType, *dbPath, *dbDSN, *storePath)

	log.Printf("Configuration: database=%s store=%s", cfg.Database.Type, cfg.Store.Path)

	// Connect to the index database
	dbCfg := &database.Config{
		Type:        cfg.Database.Type,
		SQLitePath:  cfg.Database.SQLitePath,
		PostgresDSN: cfg.Database.PostgresDSN,
		LogLevel:    logger.Silent, // CRITICAL: Silence GORM stdout output for MCP
	}

	db, err := database.Connect(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	log.Printf("Connected to database: %s", cfg.Database.Type)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := locking.MigrateLocks(db); err != nil {
		log.Fatalf("Failed to run lock migrations: %v", err)
	}

	log.Println("Database migrations completed")

	// Ensure the card store exists and is a git repository
	if _, err := git.EnsureRepository(cfg.Store.Path); err != nil {
		log.Fatalf("Failed to set up card store repository: %v", err)
	}

	// REBUILD MODE: Run rebuild and exit
	if *rebuildDB {
		runRebuildMode(db, cfg.Store.Path, *forceRebuild)
		return
	}

	runStdioMode(cfg, db)
}

// runRebuildMode rebuilds the index from card files and exits
func runRebuildMode(db *gorm.DB, storePath string, force bool) {
	result, err := rebuild.RebuildIndex(db, storePath, rebuild.Options{Force: force})
	if err != nil {
		log.Fatalf("Rebuild failed: %v", err)
	}

	log.Println("Rebuild completed successfully")
	log.Printf("  Cards processed: %d", result.CardsProcessed)
	log.Printf("  Cards indexed:   %d", result.CardsIndexed)
	log.Printf("  Cards skipped:   %d", result.CardsSkipped)
	log.Printf("  Links indexed:   %d", result.LinksIndexed)

	if len(result.Errors) > 0 {
		log.Printf("  Warnings: %d", len(result.Errors))
		for _, e := range result.Errors {
			log.Printf("    - %s", e)
		}
	}
}

// runStdioMode runs the MCP server over stdin/stdout
func runStdioMode(cfg *config.Config, db *gorm.DB) {
	// Take the single-writer lock before opening the store
	hostname, _ := os.Hostname()
	owner := fmt.Sprintf("%s:%d", hostname, os.Getpid())
	locker := locking.NewLocker(db, owner)
	if err := locker.Acquire(cfg.Store.Path); err != nil {
		log.Fatalf("Failed to acquire store lock: %v", err)
	}
	defer func() {
		if err := locker.Release(cfg.Store.Path); err != nil {
			log.Printf("Warning: failed to release store lock: %v", err)
		}
	}()

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open card store: %v", err)
	}
	defer s.Close()

	log.Printf("Opened card store at %s (%d cards)", cfg.Store.Path, len(s.Cards()))

	mcpServer, err := server.NewMCPServer(cfg, db, s)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	// Start background autocommit scheduler when configured
	if cfg.Git.AutocommitInterval > 0 {
		sched := scheduler.NewScheduler(cfg.Store.Path, cfg.Git.AutocommitInterval).
			WithAuthor(cfg.Git.Author, cfg.Git.Email)
		sched.Start()
		defer sched.Stop()
		log.Printf("Autocommit scheduler started (interval: %d minutes)", cfg.Git.AutocommitInterval)
	}

	log.Println("MCP server ready (stdio mode) - 7 tools registered")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}

// applyEnvOverrides applies environment variable overrides to configuration
func applyEnvOverrides(cfg *config.Config) {
	if dbType := getEnv("DB_TYPE", "ZETTEL_DB_TYPE"); dbType != "" {
		cfg.Database.Type = dbType
		log.Printf("Database type from ENV: %s", dbType)
	}

	if dbPath := getEnv("DB_PATH", "ZETTEL_DB_PATH"); dbPath != "" {
		cfg.Database.SQLitePath = dbPath
		log.Printf("Database path from ENV")
	}

	if dbDSN := getEnv("DB_DSN", "ZETTEL_DB_DSN"); dbDSN != "" {
		cfg.Database.PostgresDSN = dbDSN
		log.Printf("Database DSN from ENV (hidden)")
	}

	if storePath := os.Getenv("ZETTEL_STORE_PATH"); storePath != "" {
		cfg.Store.Path = storePath
		log.Printf("Store path from ENV: %s", storePath)
	}
}

// applyCLIOverrides applies command-line flag overrides to configuration
func applyCLIOverrides(cfg *config.Config, dbType, dbPath, dbDSN, storePath string) {
	if dbType != "" {
		cfg.Database.Type = dbType
		log.Printf("Database type from CLI: %s", dbType)
	}

	if dbPath != "" {
		cfg.Database.SQLitePath = dbPath
		log.Printf("Database path from CLI")
	}

	if dbDSN != "" {
		cfg.Database.PostgresDSN = dbDSN
		log.Printf("Database DSN from CLI (hidden)")
	}

	if storePath != "" {
		cfg.Store.Path = storePath
		log.Printf("Store path from CLI: %s", storePath)
	}
}

// getEnv tries multiple environment variable names and returns the first non-empty value
func getEnv(names ...string) string {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val
		}
	}
	return ""
}
