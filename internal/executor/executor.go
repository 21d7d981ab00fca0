// Package executor applies the statements internal/sqlgen.GenerateSql produces to a
// live destination connection. Grounded on the teacher's
// internal/sync/syncer_ddl_executor.go: same per-statement exec loop, same
// shouldIgnoreDDLError classification (ported almost verbatim, since "object already
// exists"/"does not exist" DDL races are dialect properties, not sync-specific ones),
// same go.uber.org/multierr accumulation when continuing past non-ignorable failures.
package executor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dbschema/schemadiff/internal/db"
	"github.com/dbschema/schemadiff/internal/sqlgen"
)

// Result reports what happened applying a batch of statements.
type Result struct {
	Executed int
	Ignored  int
}

// Apply executes each statement against conn in order, within a single transaction.
// continueOnError controls whether a non-ignorable failure aborts the whole batch
// (false, the default for a single migration run) or is accumulated and reported at
// the end via multierr (true); either way, a non-ignorable failure rolls back the
// whole transaction, so nothing of the batch is committed. onProgress, if non-nil, is invoked once per statement attempted
// (executed or ignored), letting a caller drive a progress bar.
func Apply(ctx context.Context, conn *db.Connector, statements []sqlgen.Statement, continueOnError bool, logger *zap.Logger, onProgress func()) (Result, error) {
	log := logger.Named("executor").With(zap.String("dialect", conn.Dialect))
	if conn.SQLDB != nil {
		return applyRaw(ctx, conn, statements, continueOnError, log, onProgress)
	}
	return applyGorm(ctx, conn, statements, continueOnError, log, onProgress)
}

func applyGorm(ctx context.Context, conn *db.Connector, statements []sqlgen.Statement, continueOnError bool, log *zap.Logger, onProgress func()) (Result, error) {
	var result Result

	tx := conn.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return result, fmt.Errorf("executor: begin transaction: %w", tx.Error)
	}

	var accumulated error
	for _, stmt := range statements {
		text := strings.TrimRight(strings.TrimSpace(stmt.Text), ";")
		if text == "" {
			continue
		}
		log.Debug("executing statement", zap.String("sql", text))
		if err := tx.Exec(text, stmt.Parameters...).Error; err != nil {
			if shouldIgnoreDDLError(conn.Dialect, err) {
				log.Warn("statement produced an ignorable error, continuing", zap.String("sql", text), zap.Error(err))
				result.Ignored++
				if onProgress != nil {
					onProgress()
				}
				continue
			}
			wrapped := fmt.Errorf("executor: statement failed: [%s]: %w", text, err)
			if continueOnError {
				accumulated = multierr.Append(accumulated, wrapped)
				if onProgress != nil {
					onProgress()
				}
				continue
			}
			tx.Rollback()
			return result, wrapped
		}
		result.Executed++
		if onProgress != nil {
			onProgress()
		}
	}

	if accumulated != nil {
		tx.Rollback()
		return result, accumulated
	}
	if err := tx.Commit().Error; err != nil {
		return result, fmt.Errorf("executor: commit: %w", err)
	}
	return result, nil
}

// applyRaw drives the sqlserver path directly through database/sql, since there is no
// GORM dialector in play there (see db.Connector's doc comment).
func applyRaw(ctx context.Context, conn *db.Connector, statements []sqlgen.Statement, continueOnError bool, log *zap.Logger, onProgress func()) (Result, error) {
	var result Result

	tx, err := conn.SQLDB.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("executor: begin transaction: %w", err)
	}

	var accumulated error
	for _, stmt := range statements {
		text := strings.TrimRight(strings.TrimSpace(stmt.Text), ";")
		if text == "" {
			continue
		}
		log.Debug("executing statement", zap.String("sql", text))
		if _, err := tx.ExecContext(ctx, text, stmt.Parameters...); err != nil {
			if shouldIgnoreDDLError(conn.Dialect, err) {
				log.Warn("statement produced an ignorable error, continuing", zap.String("sql", text), zap.Error(err))
				result.Ignored++
				if onProgress != nil {
					onProgress()
				}
				continue
			}
			wrapped := fmt.Errorf("executor: statement failed: [%s]: %w", text, err)
			if continueOnError {
				accumulated = multierr.Append(accumulated, wrapped)
				if onProgress != nil {
					onProgress()
				}
				continue
			}
			tx.Rollback()
			return result, wrapped
		}
		result.Executed++
		if onProgress != nil {
			onProgress()
		}
	}

	if accumulated != nil {
		tx.Rollback()
		return result, accumulated
	}
	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("executor: commit: %w", err)
	}
	return result, nil
}

var sqlStatePattern = regexp.MustCompile(`\(sqlstate\s+([a-z0-9]{5})\)`)

// ignorableSQLStates maps a dialect to SQLSTATE codes that indicate a benign
// already-applied/already-absent race rather than a real failure.
var ignorableSQLStates = map[string][]string{
	"postgres": {"42P07", "42710", "42704"},
}

var ignorableMessagePatterns = map[string][]string{
	"mysql": {
		"duplicate key name",
		"table '.*' already exists",
		"unknown table '.*'",
		"already exists",
		"doesn't exist",
	},
	"postgres": {
		`relation ".*" already exists`,
		`index ".*" already exists`,
		`constraint ".*" for relation ".*" already exists`,
		`constraint ".*" on table ".*" does not exist`,
		`index ".*" does not exist`,
		`table ".*" does not exist`,
	},
	"sqlite": {
		"index .* already exists",
		"table .* already exists",
		"no such index",
		"no such table",
		"already exists",
	},
	"sqlserver": {
		"there is already an object named",
		"cannot drop the .* because it does not exist",
	},
}

// shouldIgnoreDDLError reports whether err represents a benign "already applied" or
// "already absent" race, ported from the teacher's shouldIgnoreDDLError.
func shouldIgnoreDDLError(dialect string, err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())

	if states, ok := ignorableSQLStates[dialect]; ok {
		if m := sqlStatePattern.FindStringSubmatch(errStr); len(m) > 1 {
			sqlState := strings.ToUpper(m[1])
			for _, state := range states {
				if sqlState == state {
					return true
				}
			}
		}
	}

	for _, pattern := range ignorableMessagePatterns[dialect] {
		if matched, _ := regexp.MatchString(pattern, errStr); matched {
			return true
		}
	}
	return false
}
