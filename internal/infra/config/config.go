package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env              string
	Debug            bool
	HTTPAddr         string
	StorageMode      string
	MongoURI         string
	MongoDB          string
	KafkaBrokers     []string
	KafkaTopicPrefix string
	ShutdownTimeout  time.Duration
	Currency         string

	// Marketplace fee rates in basis points of the amounts they apply to.
	GuestServiceFeeBps int64
	HostServiceFeeBps  int64
	OccupancyTaxBps    int64
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		StorageMode:      strings.ToLower(getEnv("STORAGE_MODE", "memory")),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "staybook"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		Currency:         getEnv("CURRENCY", "USD"),
	}
	debug, err := parseBoolEnv("DEBUG", false)
	if err != nil {
		return Config{}, err
	}
	cfg.Debug = debug

	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	shutdown, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout = shutdown

	guestBps, err := parseBpsEnv("GUEST_SERVICE_FEE_BPS", 1200)
	if err != nil {
		return Config{}, err
	}
	cfg.GuestServiceFeeBps = guestBps

	hostBps, err := parseBpsEnv("HOST_SERVICE_FEE_BPS", 300)
	if err != nil {
		return Config{}, err
	}
	cfg.HostServiceFeeBps = hostBps

	taxBps, err := parseBpsEnv("OCCUPANCY_TAX_BPS", 800)
	if err != nil {
		return Config{}, err
	}
	cfg.OccupancyTaxBps = taxBps

	switch cfg.StorageMode {
	case "memory":
	case "mongo":
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_MODE %q", cfg.StorageMode)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBpsEnv(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s basis points: %w", key, err)
	}
	if v < 0 || v > 10000 {
		return 0, fmt.Errorf("%s out of range: %d", key, v)
	}
	return v, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
