package config

import (
	"strings"
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName          string
	Port             string
	Env              string
	Debug            bool
	DefaultCompany   string
	VendorAPIURL     string
	VendorAPIToken   string
	VendorAPITimeout time.Duration
	ShipmentCacheTTL time.Duration
	ImportSchedule   string
	CompaniesFile    string
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() *Config {
	once.Do(func() {
		AppConfig = &Config{
			AppName:          GetEnv("APP_NAME", "Problem Solving Tracker"),
			Port:             GetEnv("PORT", "9000"),
			Env:              GetEnv("APP_ENV", "production"),
			Debug:            GetEnv("DEBUG", "") == "true",
			DefaultCompany:   NormalizeCompany(GetEnv("DEFAULT_COMPANY", "")),
			VendorAPIURL:     strings.TrimRight(GetEnv("VENDOR_API_URL", ""), "/"),
			VendorAPIToken:   GetEnv("VENDOR_API_TOKEN", ""),
			VendorAPITimeout: parseDuration(GetEnv("VENDOR_API_TIMEOUT", ""), 30*time.Second),
			ShipmentCacheTTL: parseDuration(GetEnv("SHIPMENT_CACHE_TTL", ""), time.Minute),
			ImportSchedule:   GetEnv("IMPORT_SCHEDULE", "0 5 * * *"),
			CompaniesFile:    GetEnv("COMPANIES_FILE", "companies.yaml"),
		}
	})
	return AppConfig
}

// NormalizeCompany canonicalizes a tenant key.
func NormalizeCompany(company string) string {
	return strings.ToLower(strings.TrimSpace(company))
}

func parseDuration(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
