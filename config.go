package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the server configuration. Values come from COLLECTABLES_*
// environment variables, optionally loaded from a .env file.
type Config struct {
	Host string
	Port int

	FactoryAddress common.Address

	// HTTPProviderURL, when set, is used to look up contract code for
	// approval targets. KnownContracts are treated as contracts regardless.
	HTTPProviderURL string
	KnownContracts  []common.Address

	CORSAllowedOrigins []string
	RateLimit          float64
	RateBurst          int

	// TrustProxyHeaders makes the rate limiter key clients by X-Real-Ip. Only
	// enable it behind a proxy that sets the header.
	TrustProxyHeaders bool

	LogLevel logrus.Level
}

// LoadConfig reads the configuration from the environment. envFiles are
// loaded first; missing files are ignored and variables already set in the
// environment take precedence.
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, envFile := range envFiles {
		if _, statErr := os.Stat(envFile); statErr != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}

	config := &Config{
		Host:            getEnv("COLLECTABLES_SERVER_HOST", "127.0.0.1"),
		HTTPProviderURL: os.Getenv("COLLECTABLES_HTTP_PROVIDER_URL"),
	}

	var err error
	if config.Port, err = getEnvAsInt("COLLECTABLES_SERVER_PORT", 7191); err != nil {
		return nil, err
	}
	if config.RateBurst, err = getEnvAsInt("COLLECTABLES_RATE_BURST", 20); err != nil {
		return nil, err
	}
	rateRaw := getEnv("COLLECTABLES_RATE_LIMIT", "10")
	if config.RateLimit, err = strconv.ParseFloat(rateRaw, 64); err != nil {
		return nil, fmt.Errorf("COLLECTABLES_RATE_LIMIT must be a number, got %s", rateRaw)
	}

	trustRaw := getEnv("COLLECTABLES_TRUST_PROXY_HEADERS", "false")
	if config.TrustProxyHeaders, err = strconv.ParseBool(trustRaw); err != nil {
		return nil, fmt.Errorf("COLLECTABLES_TRUST_PROXY_HEADERS must be a boolean, got %s", trustRaw)
	}

	factoryAddressRaw := getEnv("COLLECTABLES_FACTORY_ADDRESS", "0x0000000000000000000000000000000000000fac")
	if !common.IsHexAddress(factoryAddressRaw) {
		return nil, fmt.Errorf("COLLECTABLES_FACTORY_ADDRESS must be an Ethereum address, got %s", factoryAddressRaw)
	}
	config.FactoryAddress = common.HexToAddress(factoryAddressRaw)

	for _, raw := range splitList(os.Getenv("COLLECTABLES_CONTRACT_ADDRESSES")) {
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("COLLECTABLES_CONTRACT_ADDRESSES contains an invalid address: %s", raw)
		}
		config.KnownContracts = append(config.KnownContracts, common.HexToAddress(raw))
	}
	config.CORSAllowedOrigins = splitList(os.Getenv("COLLECTABLES_CORS_ALLOWED_ORIGINS"))

	levelRaw := getEnv("COLLECTABLES_LOG_LEVEL", "info")
	if config.LogLevel, err = logrus.ParseLevel(levelRaw); err != nil {
		return nil, fmt.Errorf("COLLECTABLES_LOG_LEVEL: %w", err)
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %s", key, raw)
	}
	return value, nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
