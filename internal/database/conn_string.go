package database

import (
	"fmt"
	"net/url"

	"github.com/rickgao/fxsync/internal/config"
)

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg config.DBConfig) string {
	return buildURL("postgres", cfg)
}

// BuildMigrateURL builds the pgx5:// URL expected by the migrate driver.
func BuildMigrateURL(cfg config.DBConfig) string {
	return buildURL("pgx5", cfg)
}

func buildURL(scheme string, cfg config.DBConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"%s://%s:%s@%s:%d/%s?sslmode=%s",
		scheme,
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}
