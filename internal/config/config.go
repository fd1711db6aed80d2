// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted by APPREGISTRY_STORE.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	Store      string
	DataPath   string
	DBPath     string
	RepoDir    string
	GitTimeout time.Duration

	// Build snapshot inputs.
	BuildMode     string
	BuildApp      bool
	BasePath      string
	InputTemplate string
}

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment without overriding variables that are already
// set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and returns a validated Config.
// Optional variables with defaults: APPREGISTRY_LISTEN_ADDR (127.0.0.1:8080),
// APPREGISTRY_STORE (json), APPREGISTRY_DATA_PATH (data/apps.json),
// APPREGISTRY_DB_PATH (data/apps.db), APPREGISTRY_REPO_DIR (.),
// APPREGISTRY_GIT_TIMEOUT (3s), BUILD_MODE (standalone), BUILD_APP (unset),
// ALIBABA_PATH (empty; APP_BASE_PATH is read when it is unset),
// DEFAULT_INPUT_TEMPLATE ({{input}}).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("APPREGISTRY_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	store := StoreJSON
	if v, ok := os.LookupEnv("APPREGISTRY_STORE"); ok && v != "" {
		store = strings.ToLower(strings.TrimSpace(v))
	}
	if store != StoreJSON && store != StoreSQLite {
		return nil, fmt.Errorf("APPREGISTRY_STORE must be %q or %q, got %q", StoreJSON, StoreSQLite, store)
	}

	dataPath := "data/apps.json"
	if v, ok := os.LookupEnv("APPREGISTRY_DATA_PATH"); ok && v != "" {
		dataPath = v
	}

	dbPath := "data/apps.db"
	if v, ok := os.LookupEnv("APPREGISTRY_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	repoDir := "."
	if v, ok := os.LookupEnv("APPREGISTRY_REPO_DIR"); ok && v != "" {
		repoDir = v
	}

	gitTimeout := 3 * time.Second
	if v, ok := os.LookupEnv("APPREGISTRY_GIT_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("APPREGISTRY_GIT_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("APPREGISTRY_GIT_TIMEOUT must be positive, got %q", v)
		}
		gitTimeout = parsed
	}

	buildMode := "standalone"
	if v, ok := os.LookupEnv("BUILD_MODE"); ok {
		buildMode = v
	}

	basePath := os.Getenv("APP_BASE_PATH")
	if v, ok := os.LookupEnv("ALIBABA_PATH"); ok {
		basePath = v
	}

	inputTemplate := "{{input}}"
	if v, ok := os.LookupEnv("DEFAULT_INPUT_TEMPLATE"); ok {
		inputTemplate = v
	}

	return &Config{
		ListenAddr:    listenAddr,
		Store:         store,
		DataPath:      dataPath,
		DBPath:        dbPath,
		RepoDir:       repoDir,
		GitTimeout:    gitTimeout,
		BuildMode:     buildMode,
		BuildApp:      os.Getenv("BUILD_APP") != "",
		BasePath:      basePath,
		InputTemplate: inputTemplate,
	}, nil
}
