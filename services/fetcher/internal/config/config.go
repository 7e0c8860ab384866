package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAISWindow      = 10 * time.Minute
	defaultRequestTimeout = 60 * time.Second
	defaultSodirPageSize  = 1000
	defaultSodirRPS       = 4.0
)

// Config holds runtime configuration for the fetcher CLI.
type Config struct {
	DatabaseURL    string
	SodirQueryURL  string
	SodirPageSize  int
	SodirRPS       float64
	BWTokenURL     string
	BWAISURL       string
	BWClientID     string
	BWClientSecret string
	KDHAuthURL     string
	KDHAISURL      string
	KDHUsername    string
	KDHPassword    string
	AISWindow      time.Duration
	RequestTimeout time.Duration
	DryRun         bool
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		SodirPageSize:  defaultSodirPageSize,
		SodirRPS:       defaultSodirRPS,
		AISWindow:      defaultAISWindow,
		RequestTimeout: defaultRequestTimeout,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	cfg.SodirQueryURL = strings.TrimSpace(os.Getenv("SODIR_QUERY_URL"))
	cfg.BWTokenURL = strings.TrimSpace(os.Getenv("BW_TOKEN_URL"))
	cfg.BWAISURL = strings.TrimSpace(os.Getenv("BW_AIS_URL"))
	cfg.BWClientID = strings.TrimSpace(os.Getenv("BWAPI_CLIENTID_URLENCODED"))
	cfg.BWClientSecret = strings.TrimSpace(os.Getenv("BWAPI_PWSECRET"))
	cfg.KDHAuthURL = strings.TrimSpace(os.Getenv("KDH_AUTH_URL"))
	cfg.KDHAISURL = strings.TrimSpace(os.Getenv("KDH_AIS_URL"))
	cfg.KDHUsername = strings.TrimSpace(os.Getenv("KDH_USERNAME"))
	cfg.KDHPassword = strings.TrimSpace(os.Getenv("KDH_PW"))

	if v := strings.TrimSpace(os.Getenv("SODIR_PAGE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid SODIR_PAGE_SIZE: %s", v)
		}
		cfg.SodirPageSize = n
	}

	if v := strings.TrimSpace(os.Getenv("SODIR_RPS")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return cfg, fmt.Errorf("invalid SODIR_RPS: %s", v)
		}
		cfg.SodirRPS = f
	}

	if v := strings.TrimSpace(os.Getenv("AIS_WINDOW")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid AIS_WINDOW: %w", err)
		}
		cfg.AISWindow = d
	}

	if v := strings.TrimSpace(os.Getenv("FETCHER_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid FETCHER_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	return cfg, nil
}
