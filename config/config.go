// Package config reads runtime settings from a dotenv file, the process
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type PostgresConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
}

// DSN builds a lib/pq connection URL.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     "/" + p.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

type MongoConfig struct {
	URI      string
	Database string
	// Transactions wraps each publish in a session transaction. Needs a
	// replica set or sharded cluster.
	Transactions bool
}

type Config struct {
	Addr        string
	StoreDriver string
	Postgres    PostgresConfig
	Mongo       MongoConfig
	JWTSecret   string
	CORSOrigins []string
	LogLevel    string

	// EnvFileLoaded reports whether the dotenv file existed.
	EnvFileLoaded bool
}

// Load reads envFile if present, then the environment. A missing file is
// not an error.
func Load(envFile string) (*Config, error) {
	loaded := false
	if envFile != "" {
		err := godotenv.Load(envFile)
		switch {
		case err == nil:
			loaded = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Addr:        getEnv("ADDR", ":8080"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		Postgres: PostgresConfig{
			User:     getEnv("user", ""),
			Password: getEnv("password", ""),
			Host:     getEnv("host", "localhost"),
			Port:     getEnv("port", "5432"),
			DBName:   getEnv("dbname", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "resume"),
		},
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnvFileLoaded: loaded,
	}

	if raw := getEnv("MONGO_TRANSACTIONS", ""); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("parse MONGO_TRANSACTIONS: %w", err)
		}
		cfg.Mongo.Transactions = v
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want memory, postgres or mongo)", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Addr == "" {
		return errors.New("listen address is empty")
	}
	return nil
}

// Flags holds command-line overrides. Only flags set explicitly replace the
// loaded configuration.
type Flags struct {
	EnvFile  string
	Addr     string
	Store    string
	LogLevel string

	fs *pflag.FlagSet
}

func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")
	fs.StringVar(&f.Addr, "addr", "", "listen address (overrides ADDR)")
	fs.StringVar(&f.Store, "store", "", "storage backend: memory, postgres or mongo (overrides STORE_DRIVER)")
	fs.StringVar(&f.LogLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	return f
}

func (f *Flags) Apply(cfg *Config) {
	if f.fs.Changed("addr") {
		cfg.Addr = f.Addr
	}
	if f.fs.Changed("store") {
		cfg.StoreDriver = strings.ToLower(f.Store)
	}
	if f.fs.Changed("log-level") {
		cfg.LogLevel = f.LogLevel
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
