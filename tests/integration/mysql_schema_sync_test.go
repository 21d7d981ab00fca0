//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbschema/schemadiff/internal/db"
	"github.com/dbschema/schemadiff/internal/differ"
	"github.com/dbschema/schemadiff/internal/executor"
	"github.com/dbschema/schemadiff/internal/introspect"
	"github.com/dbschema/schemadiff/internal/logger"
	"github.com/dbschema/schemadiff/internal/sqlgen"
)

const mysqlDesiredSchema = `
CREATE TABLE users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL
);
CREATE TABLE posts (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL,
	title VARCHAR(200) NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id)
);
`

// TestMySQLSchemaSync_CreateTables verifies that an empty MySQL destination, diffed
// against a populated MySQL database holding the desired schema, produces a statement
// batch that, once applied, brings the destination's table/column/FK shape in line
// with the desired one, and that the pair is diff-clean afterward.
func TestMySQLSchemaSync_CreateTables(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION_TESTS") != "" || testing.Short() {
		t.Skip("Skipping integration test.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	require.NoError(t, logger.Init(true, false))

	desiredDB := startMySQLContainer(ctx, t)
	currentDB := startMySQLContainer(ctx, t)
	defer stopContainer(ctx, t, desiredDB)
	defer stopContainer(ctx, t, currentDB)

	require.NoError(t, desiredDB.DB.Exec(mysqlDesiredSchema).Error)

	desiredModel, err := introspect.Introspect(ctx, "mysql", desiredDB.DSN, nil)
	require.NoError(t, err)
	currentModel, err := introspect.Introspect(ctx, "mysql", currentDB.DSN, nil)
	require.NoError(t, err)

	operations, err := differ.Diff(currentModel, desiredModel)
	require.NoError(t, err)
	require.NotEmpty(t, operations, "expected at least a CreateTable for users and posts")

	gen, err := sqlgen.Create("mysql", currentModel, desiredModel)
	require.NoError(t, err)
	statements, err := sqlgen.GenerateSql(operations, gen)
	require.NoError(t, err)
	require.NotEmpty(t, statements)

	dstConn := &db.Connector{DB: currentDB.DB, Dialect: "mysql"}
	result, err := executor.Apply(ctx, dstConn, statements, false, logger.Log, nil)
	require.NoError(t, err)
	assert.Greater(t, result.Executed, 0)

	var tableCount int64
	require.NoError(t, currentDB.DB.Raw(`
		SELECT count(*) FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name IN ('users', 'posts')
	`).Scan(&tableCount).Error)
	assert.EqualValues(t, 2, tableCount, "both tables should now exist in the destination")

	convergedModel, err := introspect.Introspect(ctx, "mysql", currentDB.DSN, nil)
	require.NoError(t, err)
	residual, err := differ.Diff(convergedModel, desiredModel)
	require.NoError(t, err)
	assert.Empty(t, residual, "schemas should match after applying the generated statements")
}
