package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Backends accepted by DATA_BACKEND.
var Backends = []string{"memory", "sqlite", "mongo", "bolt", "aztables"}

type Config struct {
	// Identity of the single ledger owner
	UserID string

	// Backend selection
	DataBackend string
	DataDir     string

	// SQLite
	SQLiteDBPath string

	// MongoDB
	MongoURI      string
	MongoDatabase string

	// bbolt
	BoltDBPath string

	// Azure Table Storage
	TableServiceURL string
	SnapshotTable   string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Exports
	GoogleSpreadsheetID string
	BlobServiceURL      string
	ExportContainer     string

	// Autosave and cache
	AutosaveDelay time.Duration
	CacheSize     int
	CacheTTL      time.Duration

	// Worker
	ExportBatchSize int
	ExportInterval  time.Duration

	NetWorthSeedFile string
}

func Load() *Config {
	return &Config{
		UserID: getEnv("USER_ID", "local"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),
		DataDir:     getEnv("DATA_DIR", "data"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budgetbook.db"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "budgetbook"),

		BoltDBPath: getEnv("BOLT_DB_PATH", "./data/budgetbook.bolt"),

		TableServiceURL: getEnv("TABLE_SERVICE_URL", ""),
		SnapshotTable:   getEnv("SNAPSHOT_TABLE", "monthsnapshots"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budgetbook"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "month_saved"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		BlobServiceURL:      getEnv("BLOB_SERVICE_URL", ""),
		ExportContainer:     getEnv("EXPORT_CONTAINER", "exports"),

		AutosaveDelay: getEnvDuration("AUTOSAVE_DELAY", time.Second),
		CacheSize:     getEnvInt("CACHE_SIZE", 64),
		CacheTTL:      getEnvDuration("CACHE_TTL", 10*time.Minute),

		ExportBatchSize: getEnvInt("EXPORT_BATCH_SIZE", 10),
		ExportInterval:  getEnvDuration("EXPORT_INTERVAL", 30*time.Second),

		NetWorthSeedFile: getEnv("NET_WORTH_SEED_FILE", ""),
	}
}

// Validate validates the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.UserID) == "" {
		errors = append(errors, "user id cannot be empty")
	}

	isValidBackend := false
	for _, backend := range Backends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if msg := ensureDir(c.SQLiteDBPath); msg != "" {
			errors = append(errors, msg)
		}
	case "bolt":
		if c.BoltDBPath == "" {
			errors = append(errors, "bolt database path cannot be empty when using bolt backend")
		} else if msg := ensureDir(c.BoltDBPath); msg != "" {
			errors = append(errors, msg)
		}
	case "mongo":
		if !strings.HasPrefix(c.MongoURI, "mongodb://") && !strings.HasPrefix(c.MongoURI, "mongodb+srv://") {
			errors = append(errors, fmt.Sprintf("invalid MongoDB URI '%s': must start with mongodb:// or mongodb+srv://", c.MongoURI))
		}
		if c.MongoDatabase == "" {
			errors = append(errors, "MongoDB database name cannot be empty when using mongo backend")
		}
	case "aztables":
		if c.TableServiceURL == "" {
			errors = append(errors, "TABLE_SERVICE_URL is required when using aztables backend")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.BlobServiceURL != "" && c.ExportContainer == "" {
		errors = append(errors, "export container cannot be empty when BLOB_SERVICE_URL is provided")
	}

	if c.AutosaveDelay < 0 {
		errors = append(errors, fmt.Sprintf("invalid autosave delay %v: must not be negative", c.AutosaveDelay))
	} else if c.AutosaveDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid autosave delay %v: must be at most 1 minute", c.AutosaveDelay))
	}

	if c.CacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must not be negative", c.CacheSize))
	}

	if c.ExportBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid export batch size %d: must be at least 1", c.ExportBatchSize))
	} else if c.ExportBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid export batch size %d: must be at most 1000", c.ExportBatchSize))
	}

	if c.ExportInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at least 1 second", c.ExportInterval))
	} else if c.ExportInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at most 24 hours", c.ExportInterval))
	}

	if c.NetWorthSeedFile != "" {
		if _, err := os.Stat(c.NetWorthSeedFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("net worth seed file does not exist: %s", c.NetWorthSeedFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ensureDir creates the parent directory of path when missing.
func ensureDir(path string) string {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return ""
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Sprintf("cannot create database directory '%s': %v", dir, err)
		}
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
