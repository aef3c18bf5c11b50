package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/gymgate.db"

	// Event poller
	PollIntervalSeconds int // how often the poller wakes (default 30)
	PollPageSize        int // max messages fetched per branch per cycle

	// Vendor API
	VendorTimeoutSeconds int // per-request timeout for vendor calls

	// Sync log retention
	SyncLogRetentionDays int // 0 = keep forever
	PruneIntervalHours   int // how often the pruner runs (default 6)
}

func FromEnv() Config {
	// Optional .env for local development; a missing file is fine.
	_ = godotenv.Load()

	addr := getenvDefault("GYMGATE_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("GYMGATE_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("GYMGATE_DB_PATH", "./data/gymgate.db")

	pollInterval := getenvInt("GYMGATE_POLL_INTERVAL_SECONDS", 30)
	pollPageSize := getenvInt("GYMGATE_POLL_PAGE_SIZE", 100)
	vendorTimeout := getenvInt("GYMGATE_VENDOR_TIMEOUT_SECONDS", 30)

	retentionDays := getenvInt("GYMGATE_SYNCLOG_RETENTION_DAYS", 30)
	pruneInterval := getenvInt("GYMGATE_PRUNE_INTERVAL_HOURS", 6)

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   dbPath,

		PollIntervalSeconds:  pollInterval,
		PollPageSize:         pollPageSize,
		VendorTimeoutSeconds: vendorTimeout,

		SyncLogRetentionDays: retentionDays,
		PruneIntervalHours:   pruneInterval,
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
