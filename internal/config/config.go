package config

import "os"

// Config gathers the terminal's environment-driven settings.
type Config struct {
	Port string

	CatalogURL    string
	SubmissionURL string
	PrintURL      string

	RedisAddr string
	MySQLDSN  string

	BusinessName    string
	BusinessAddress string
	BusinessPhone   string

	ManagerPIN   string
	TerminalUser string
	TerminalPass string
	JWTSecret    string
}

// Load reads the configuration from environment variables, falling back to
// local-dev defaults.
func Load() *Config {
	return &Config{
		Port:            envOr("POS_PORT", "8084"),
		CatalogURL:      envOr("CATALOG_URL", "http://localhost:8081"),
		SubmissionURL:   envOr("SUBMISSION_URL", "http://localhost:8082"),
		PrintURL:        envOr("PRINT_BRIDGE_URL", "http://localhost:8090"),
		RedisAddr:       envOr("REDIS_ADDR", "localhost:6379"),
		MySQLDSN:        envOr("MYSQL_DSN", "root:@tcp(127.0.0.1:3306)/pos-journal"),
		BusinessName:    envOr("BUSINESS_NAME", "L'Escale Royale"),
		BusinessAddress: os.Getenv("BUSINESS_ADDRESS"),
		BusinessPhone:   os.Getenv("BUSINESS_PHONE"),
		ManagerPIN:      envOr("MANAGER_PIN", "123456"),
		TerminalUser:    envOr("TERMINAL_USER", "staff"),
		TerminalPass:    envOr("TERMINAL_PASS", "staff"),
		JWTSecret:       envOr("JWT_SECRET", "secret"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
