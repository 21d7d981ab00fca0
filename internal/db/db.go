package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dbschema/schemadiff/internal/logger"
)

// Connector wraps a live connection. For mysql/postgres/sqlite it is GORM-backed (DB
// non-nil), matching the teacher's internal/db.Connector exactly; for sqlserver there
// is no GORM dialector in play here (internal/sqlgen's SQL-Server generator is
// exercised directly against database/sql via the "mssql" driver registered by
// github.com/denisenkom/go-mssqldb), so SQLDB is populated instead and DB is nil.
type Connector struct {
	DB      *gorm.DB
	SQLDB   *sql.DB
	Dialect string
}

func New(dialect, dsn string, gl logger.GormLoggerInterface) (*Connector, error) {
	lcDialect := strings.ToLower(dialect)

	if lcDialect == "sqlserver" || lcDialect == "mssql" {
		sqlDB, err := sql.Open("mssql", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect database (sqlserver): %w", err)
		}
		return &Connector{SQLDB: sqlDB, Dialect: "sqlserver"}, nil
	}

	var dialector gorm.Dialector
	switch lcDialect {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gl,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database (%s): %w", lcDialect, err)
	}

	return &Connector{
		DB:      db,
		Dialect: lcDialect,
	}, nil
}

// rawDB returns the underlying *sql.DB regardless of which backing path (GORM or raw
// database/sql) this connector was opened with.
func (c *Connector) rawDB() (*sql.DB, error) {
	if c.SQLDB != nil {
		return c.SQLDB, nil
	}
	return c.DB.DB()
}

// Optimize configures the underlying connection pool.
func (c *Connector) Optimize(poolSize int, maxLifetime time.Duration) error {
	sqlDB, err := c.rawDB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB for optimization: %w", err)
	}

	if poolSize <= 0 {
		poolSize = 10
	}
	if maxLifetime <= 0 {
		maxLifetime = time.Hour
	}

	switch c.Dialect {
	case "mysql", "postgres", "sqlserver":
		sqlDB.SetMaxIdleConns(poolSize / 2)
		sqlDB.SetMaxOpenConns(poolSize)
		sqlDB.SetConnMaxLifetime(maxLifetime)
	case "sqlite":
		// SQLite typically works best with a single connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}
	return nil
}

func (c *Connector) Ping(ctx context.Context) error {
	sqlDB, err := c.rawDB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB for ping: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}

func (c *Connector) Close() error {
	sqlDB, err := c.rawDB()
	if err != nil {
		logger.Log.Warn("Failed to get sql.DB for closing, attempting close anyway", zap.Error(err))
		return fmt.Errorf("failed to get sql.DB handle to close: %w", err)
	}
	logger.Log.Info("Closing database connection pool", zap.String("dialect", c.Dialect))
	return sqlDB.Close()
}
