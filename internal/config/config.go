package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Env            string
	Port           string
	MongoURI       string
	DBName         string
	JWTSecret      string
	AccessTokenTTL time.Duration
	AdminEmail     string
	AdminPassword  string
	PublicDir      string
	PublicBaseURL  string
	CORSOrigins    []string
	Transactions   bool
	WatchOrders    bool

	StoreName      string
	StoreTagline   string
	StorePhone     string
	WhatsAppNumber string
	TimeZone       string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	return Config{
		Env:            getEnvOrDefault("APP_ENV", "production"),
		Port:           getEnvOrDefault("PORT", "8080"),
		MongoURI:       getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		DBName:         getEnvOrDefault("DB_NAME", "bitesquicky"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 12*60, time.Minute),
		AdminEmail:     strings.ToLower(getEnvOrDefault("ADMIN_EMAIL", "")),
		AdminPassword:  getEnvOrDefault("ADMIN_PASSWORD", ""),
		PublicDir:      getEnvOrDefault("PUBLIC_DIR", "./public"),
		PublicBaseURL:  strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", "/public"), "/"),
		CORSOrigins:    getListEnv("CORS_ORIGINS", []string{"*"}),
		Transactions:   getBoolEnv("MONGO_TRANSACTIONS", true),
		WatchOrders:    getBoolEnv("WATCH_ORDERS", false),

		StoreName:      getEnvOrDefault("STORE_NAME", "BitesQuicky"),
		StoreTagline:   getEnvOrDefault("STORE_TAGLINE", "Fast Campus Food Delivery"),
		StorePhone:     getEnvOrDefault("STORE_PHONE", "+254 114 097 160"),
		WhatsAppNumber: getEnvOrDefault("WHATSAPP_NUMBER", "254114097160"),
		TimeZone:       getEnvOrDefault("TIMEZONE", "Africa/Nairobi"),
	}
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		log.Printf("unknown TIMEZONE %q, using UTC: %v", c.TimeZone, err)
		return time.UTC
	}
	return loc
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
