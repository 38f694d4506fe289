package database

import (
	"net/url"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openPostgres(cfg Config) (*gorm.DB, error) {
	dsn, err := buildPostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// buildPostgresDSN renders a postgres:// URL. TLS is off unless options set sslmode.
func buildPostgresDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	addr, err := serverAddress(cfg, "postgres", "localhost", 5432)
	if err != nil {
		return "", err
	}

	query := url.Values{"sslmode": {"disable"}}
	for key, value := range cfg.Options {
		query.Set(key, value)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.User(cfg.User),
		Host:     addr,
		Path:     "/" + cfg.Name,
		RawQuery: query.Encode(),
	}
	if cfg.Password != "" {
		dsn.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return dsn.String(), nil
}
