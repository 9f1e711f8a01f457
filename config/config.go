// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath = pflag.String("config", "", "Path to a config.toml file")
	port       = pflag.Int("port", 0, "Port to listen on, overrides host.port")

	validLogLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers    = []string{"sqlite", "postgres", "mysql"}
	validAlgorithms = []string{"HS256", "HS384", "HS512"}
)

// ErrNoSecret is returned by Load when no JWT secret is configured
var ErrNoSecret = errors.New("no jwt secret provided")

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Host     HostConfig     `mapstructure:"host"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

type HostConfig struct {
	Port           int           `mapstructure:"port"`
	CORS           []string      `mapstructure:"cors"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	Algorithm string        `mapstructure:"algorithm"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type CacheConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

type CleanupConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

func genSecret() (string, error) {
	b := make([]byte, 64)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate jwt secret, %w", err)
	}

	return hex.EncodeToString(b), nil
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file, %w", err)
	}

	pflag.Parse()

	if *port > 0 {
		v.Set("host.port", *port)
	}

	err := Load(v.GetViper(), *configPath)
	if errors.Is(err, ErrNoSecret) {
		secret, genErr := genSecret()
		if genErr != nil {
			return errors.Join(err, genErr)
		}

		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + secret + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	return err
}

// Load registers env bindings and defaults on vp, reads the config file and
// validates the result. An empty path looks for config.toml in the working
// directory, a missing file is not an error in that case.
func Load(vp *v.Viper, path string) error {
	if path != "" {
		vp.SetConfigFile(path)
	} else {
		vp.SetConfigName("config")
		vp.SetConfigType("toml")
		vp.AddConfigPath(".")
	}

	//
	// ENVS
	//
	vp.BindEnv("app.log_level", "APP_LOG_LEVEL")

	vp.BindEnv("host.port", "HOST_PORT")
	vp.BindEnv("host.cors", "HOST_CORS")
	vp.BindEnv("host.request_timeout", "HOST_REQUEST_TIMEOUT")

	vp.BindEnv("database.driver", "DATABASE_DRIVER")
	vp.BindEnv("database.dsn", "DATABASE_DSN")
	vp.BindEnv("database.max_open_conns", "DATABASE_MAX_OPEN_CONNS")

	vp.BindEnv("jwt.secret", "JWT_SECRET")
	vp.BindEnv("jwt.algorithm", "JWT_ALGORITHM")
	vp.BindEnv("jwt.ttl", "JWT_TTL")

	vp.BindEnv("cache.ttl", "CACHE_TTL")
	vp.BindEnv("cache.redis_addr", "CACHE_REDIS_ADDR")

	vp.BindEnv("cleanup.interval", "CLEANUP_INTERVAL")

	//
	// Defaults
	//
	vp.SetDefault("app.log_level", "info")

	vp.SetDefault("host.port", 8080)
	vp.SetDefault("host.cors", []string{"*"})
	vp.SetDefault("host.request_timeout", 10*time.Second)

	vp.SetDefault("database.driver", "sqlite")
	vp.SetDefault("database.max_open_conns", 10)

	vp.SetDefault("jwt.algorithm", "HS256")
	vp.SetDefault("jwt.ttl", 30*time.Minute)

	vp.SetDefault("cache.ttl", time.Duration(0))

	vp.SetDefault("cleanup.interval", time.Hour)

	if err := vp.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, vp.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if vp.GetInt("host.port") <= 0 || vp.GetInt("host.port") > 65535 {
		return errors.New("invalid port provided")
	}

	if vp.GetDuration("host.request_timeout") < 0 {
		return errors.New("host.request_timeout can't be negative")
	}

	switch vp.GetString("database.driver") {
	case "sqlite":
	case "postgres", "mysql":
		if vp.GetString("database.dsn") == "" {
			return errors.New("database.dsn is required for " + vp.GetString("database.driver"))
		}
	default:
		return fmt.Errorf("invalid database driver provided, expected one of %v", validDrivers)
	}

	if vp.GetInt("database.max_open_conns") < 0 {
		return errors.New("database.max_open_conns can't be negative")
	}

	if vp.GetString("jwt.secret") == "" {
		return ErrNoSecret
	}

	if !slices.Contains(validAlgorithms, vp.GetString("jwt.algorithm")) {
		return fmt.Errorf("invalid jwt algorithm provided, expected one of %v", validAlgorithms)
	}

	if vp.GetDuration("jwt.ttl") <= 0 {
		return errors.New("jwt.ttl must be bigger than 0")
	}

	if vp.GetDuration("cache.ttl") < 0 {
		return errors.New("cache.ttl can't be negative")
	}

	if vp.GetDuration("cleanup.interval") <= 0 {
		return errors.New("cleanup.interval must be bigger than 0")
	}

	return nil
}

// Current returns a snapshot of the global configuration. Setup must have
// succeeded before.
func Current() (*Config, error) {
	return Decode(v.GetViper())
}

// Decode unmarshals the settings held by vp
func Decode(vp *v.Viper) (*Config, error) {
	cfg := &Config{}
	if err := vp.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config, %w", err)
	}

	return cfg, nil
}
