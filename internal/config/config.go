package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
)

// Config holds the core runtime configuration.  Each field corresponds to
// an environment variable.  Database fields are only required when the
// MySQL store driver is selected; the dynamo and memory drivers ignore
// them.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	StoreDriver   string // record store backend: "mysql", "dynamo" or "memory"
	PaymentsTable string // table holding payment records
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
}

// Load reads configuration values from environment variables and returns
// a Config.  Variables required for the selected store driver are
// enforced by must() and missing values cause the program to exit with a
// fatal log message.
func Load() Config {
	cfg := Config{
		Env:           getenv("APP_ENV", "dev"),
		Port:          getenv("APP_PORT", "8080"),
		StoreDriver:   getenv("STORE_DRIVER", "mysql"),
		PaymentsTable: getenv("PAYMENTS_TABLE", "payments"),
	}
	if cfg.StoreDriver == "mysql" {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
