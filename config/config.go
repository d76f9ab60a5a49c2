// Package config loads runtime settings from the environment, with an
// optional .env file next to the executable or the working directory.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the resident binary needs at startup.
type Config struct {
	// ConfigDir is where the durable store lives. Empty means the per-user
	// default (~/.desktop_overlay_manager).
	ConfigDir string

	// StoreBackend selects the durable backend: "json" (default) or "sqlite".
	StoreBackend string

	// LoopInterval is the event-loop dispatch cadence.
	LoopInterval time.Duration

	// ToggleHotkey toggles overlay visibility globally, e.g. "Ctrl+Alt+O".
	// Empty disables the hotkey listener.
	ToggleHotkey string

	// StrictStyle rejects unrecognized style options instead of logging them.
	StrictStyle bool

	EnableFileLogging bool
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	envPaths := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		envPaths = append(envPaths, filepath.Join(filepath.Dir(execPath), ".env"))
	}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			godotenv.Load(envPath)
			break
		}
	}

	cfg := &Config{
		ConfigDir:         os.Getenv("OVERLAY_CONFIG_DIR"),
		StoreBackend:      getEnvWithDefault("OVERLAY_STORE", "json"),
		LoopInterval:      loopInterval(),
		ToggleHotkey:      os.Getenv("OVERLAY_TOGGLE_HOTKEY"),
		StrictStyle:       boolEnv("OVERLAY_STRICT_STYLE"),
		EnableFileLogging: boolEnv("ENABLE_FILE_LOGGING"),
	}
	return cfg, nil
}

func loopInterval() time.Duration {
	v := os.Getenv("OVERLAY_LOOP_INTERVAL_MS")
	if v == "" {
		return 0 // manager default
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

func boolEnv(key string) bool {
	return strings.ToLower(os.Getenv(key)) == "true"
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
