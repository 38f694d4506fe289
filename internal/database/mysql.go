package database

import (
	"net/url"
	"time"

	drivermysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func openMySQL(cfg Config) (*gorm.DB, error) {
	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(mysql.Open(dsn), gormConfig())
}

// buildMySQLDSN renders a go-sql-driver DSN with utf8mb4, parsed times in local time, and any
// extra options layered on top.
func buildMySQLDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	addr, err := serverAddress(cfg, "mysql", "127.0.0.1", 3306)
	if err != nil {
		return "", err
	}

	mc := drivermysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = addr
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	if len(cfg.Options) == 0 {
		return mc.FormatDSN(), nil
	}

	// Options may name driver settings as well as session variables, so they go through the
	// driver's own parser.
	withOptions, err := drivermysql.ParseDSN(mc.FormatDSN() + "&" + encodeOptions(cfg.Options))
	if err != nil {
		return "", err
	}
	return withOptions.FormatDSN(), nil
}

func encodeOptions(options map[string]string) string {
	values := make(url.Values, len(options))
	for key, value := range options {
		values.Set(key, value)
	}
	return values.Encode()
}
