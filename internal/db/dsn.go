package db

import (
	"fmt"
	"strings"

	"github.com/dbschema/schemadiff/internal/config"
)

// BuildDSN assembles a driver-specific connection string for dbCfg, following the same
// per-dialect shape the teacher's main.go buildDSN used, with username/password
// supplied separately since they may come from Vault rather than dbCfg directly.
func BuildDSN(dbCfg config.DatabaseConfig, username, password string) (string, error) {
	switch strings.ToLower(dbCfg.Dialect) {
	case "mysql":
		sslParam := "tls=false"
		if sm := strings.ToLower(dbCfg.SSLMode); sm != "" && sm != "disable" {
			sslParam = "tls=true"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=10s&readTimeout=60s&writeTimeout=60s&%s",
			username, password, dbCfg.Host, dbCfg.Port, dbCfg.DBName, sslParam), nil
	case "postgres", "postgresql":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=10",
			dbCfg.Host, dbCfg.Port, username, password, dbCfg.DBName, dbCfg.SSLMode), nil
	case "sqlite":
		return fmt.Sprintf("file:%s?cache=shared&_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000", dbCfg.DBName), nil
	case "sqlserver", "mssql":
		return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s", username, password, dbCfg.Host, dbCfg.Port, dbCfg.DBName), nil
	default:
		return "", fmt.Errorf("cannot build DSN: unsupported dialect %q", dbCfg.Dialect)
	}
}
