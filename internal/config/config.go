package config

import (
	"os"
	"strings"
)

type Config struct {
	MongoURI            string
	RedisURI            string
	JWTSecret           string
	Port                string
	BaseURL             string   // Public URL of the frontend, used in password-reset links
	AllowedOrigins      []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	SendgridAPIKey      string
	EmailFrom           string
	Environment         string // ENV: production, development, etc.
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	// CORS: allow multiple origins so the deployed frontend works alongside local dev
	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/tracker")),
		RedisURI:            getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		Port:                getEnv("PORT", "8080"),
		BaseURL:             getEnv("BASE_URL", getEnv("FRONTEND_URL", "http://localhost:3000")),
		AllowedOrigins:      allowedOrigins,
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		SendgridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:           getEnv("EMAIL_FROM", "no-reply@tracker.local"),
		Environment:         env,
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
