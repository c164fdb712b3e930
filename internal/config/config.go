package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application level configuration loaded from environment variables.
// It is built once at startup and passed by injection; nothing reads the
// environment after Load returns.
type Config struct {
	ServerPort string
	MySQLDSN   string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret string

	// AdminEmails is the lowercased admin allowlist.
	AdminEmails []string
	// AdminPassword is either the plaintext password or a bcrypt hash of it.
	AdminPassword string

	MailServer   string
	MailPort     int
	MailUseTLS   bool
	MailUsername string
	MailPassword string
	MailSender   string

	UploadDir string
	// AllowedExtensions is the lowercased set of permitted upload extensions.
	AllowedExtensions map[string]bool

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		MySQLDSN:      getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/portal?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		AdminEmails:   splitEmails(getEnv("ADMIN_EMAILS", "admin@example.com")),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		MailServer:    os.Getenv("MAIL_SERVER"),
		MailPort:      getEnvInt("MAIL_PORT", 587),
		MailUseTLS:    getEnvBool("MAIL_USE_TLS", true),
		MailUsername:  os.Getenv("MAIL_USERNAME"),
		MailPassword:  os.Getenv("MAIL_PASSWORD"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
	}
	cfg.MailSender = getEnv("MAIL_DEFAULT_SENDER", cfg.MailUsername)

	cfg.AllowedExtensions = make(map[string]bool)
	for _, ext := range strings.Split(getEnv("ALLOWED_EXTENSIONS", "pdf,doc,docx,xlsx,xls,csv,png,jpg,jpeg"), ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" {
			cfg.AllowedExtensions[ext] = true
		}
	}

	return cfg
}

// IsAdminEmail reports whether email is on the admin allowlist.
// Comparison is case-insensitive.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, adm := range c.AdminEmails {
		if adm == email {
			return true
		}
	}
	return false
}

func splitEmails(raw string) []string {
	var emails []string
	for _, e := range strings.Split(raw, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true")
	}
	return def
}
