package database

import (
	"testing"
	"time"

	drivermysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSNDefaults(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "catalog", Name: "products"})
	require.NoError(t, err)
	require.Equal(t, "postgres://catalog@localhost:5432/products?sslmode=disable", dsn)
}

func TestBuildPostgresDSNWithOptions(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "user",
		Name:     "db",
		Host:     "db.example.com",
		Port:     6543,
		Password: "p@ss word",
		Options: map[string]string{
			"sslmode":     "require",
			"search_path": "public",
		},
	})
	require.NoError(t, err)

	parsed, err := pgconn.ParseConfig(dsn)
	require.NoError(t, err)
	require.Equal(t, "db.example.com", parsed.Host)
	require.Equal(t, uint16(6543), parsed.Port)
	require.Equal(t, "user", parsed.User)
	require.Equal(t, "p@ss word", parsed.Password)
	require.Equal(t, "db", parsed.Database)
	require.Equal(t, "public", parsed.RuntimeParams["search_path"])
	require.NotNil(t, parsed.TLSConfig)
}

func TestBuildPostgresDSNKeepsExplicitDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{DSN: "host=db user=x dbname=y"})
	require.NoError(t, err)
	require.Equal(t, "host=db user=x dbname=y", dsn)
}

func TestBuildPostgresDSNRequiresUserAndName(t *testing.T) {
	_, err := buildPostgresDSN(Config{})
	require.ErrorContains(t, err, "postgres configuration requires user and database name")
}

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "catalog", Name: "products"})
	require.NoError(t, err)
	require.Equal(t, "catalog@tcp(127.0.0.1:3306)/products?loc=Local&parseTime=true&charset=utf8mb4", dsn)
}

func TestBuildMySQLDSNWithOptions(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "user",
		Password: "secret",
		Name:     "db",
		Host:     "db.example.com",
		Port:     3307,
		Options: map[string]string{
			"tls":     "skip-verify",
			"charset": "utf8",
			"timeout": "5s",
		},
	})
	require.NoError(t, err)

	parsed, err := drivermysql.ParseDSN(dsn)
	require.NoError(t, err)
	require.Equal(t, "user", parsed.User)
	require.Equal(t, "secret", parsed.Passwd)
	require.Equal(t, "db.example.com:3307", parsed.Addr)
	require.Equal(t, "db", parsed.DBName)
	require.True(t, parsed.ParseTime)
	require.Equal(t, time.Local, parsed.Loc)
	require.Equal(t, "skip-verify", parsed.TLSConfig)
	require.Equal(t, 5*time.Second, parsed.Timeout)
	require.Equal(t, "utf8", parsed.Params["charset"])
}

func TestBuildMySQLDSNRequiresUserAndName(t *testing.T) {
	_, err := buildMySQLDSN(Config{Host: "localhost"})
	require.ErrorContains(t, err, "mysql configuration requires user and database name")
}
