package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds the runtime configuration read from the environment.
type Settings struct {
	Port                 string
	DatabaseURL          string
	JWTSecret            string
	AllowedOrigins       []string
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	SnowflakeNode        int64
	LocationPingInterval time.Duration
	InvoiceDueDays       int
	DigestSchedule       string
	SlowRequestThreshold time.Duration
}

var App Settings

// Load reads .env (if present) and the process environment into App.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("SNOWFLAKE_NODE", 1)
	v.SetDefault("LOCATION_PING_INTERVAL_MS", 300000)
	v.SetDefault("INVOICE_DUE_DAYS", 30)
	v.SetDefault("DIGEST_SCHEDULE", "0 7 * * *")
	v.SetDefault("SLOW_REQUEST_MS", 200)

	App = Settings{
		Port:                 v.GetString("PORT"),
		DatabaseURL:          v.GetString("DB_URL"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		AllowedOrigins:       splitList(v.GetString("ALLOWED_ORIGINS")),
		TwilioAccountSID:     v.GetString("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      v.GetString("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:    v.GetString("TWILIO_PHONE_NUMBER"),
		SnowflakeNode:        v.GetInt64("SNOWFLAKE_NODE"),
		LocationPingInterval: time.Duration(v.GetInt64("LOCATION_PING_INTERVAL_MS")) * time.Millisecond,
		InvoiceDueDays:       v.GetInt("INVOICE_DUE_DAYS"),
		DigestSchedule:       v.GetString("DIGEST_SCHEDULE"),
		SlowRequestThreshold: time.Duration(v.GetInt64("SLOW_REQUEST_MS")) * time.Millisecond,
	}
	return App
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
