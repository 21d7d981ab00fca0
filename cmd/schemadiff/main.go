// Command schemadiff compares the schema of two live databases and emits, or
// applies, the SQL needed to bring the destination in line with the source. It supersedes the teacher's row-level data
// sync binary: same ambient stack (zap logging, caarlos0/env configuration, Vault
// credentials, Prometheus metrics, an HTTP health/metrics server), driven instead by
// internal/differ and internal/sqlgen.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dbschema/schemadiff/internal/config"
	"github.com/dbschema/schemadiff/internal/db"
	"github.com/dbschema/schemadiff/internal/differ"
	"github.com/dbschema/schemadiff/internal/executor"
	"github.com/dbschema/schemadiff/internal/introspect"
	"github.com/dbschema/schemadiff/internal/logger"
	"github.com/dbschema/schemadiff/internal/metrics"
	"github.com/dbschema/schemadiff/internal/secrets"
	"github.com/dbschema/schemadiff/internal/server"
	"github.com/dbschema/schemadiff/internal/sqlgen"
)

var envFile string
var typeMapFileOverride string

func main() {
	root := &cobra.Command{
		Use:   "schemadiff",
		Short: "Diff and migrate relational schemas across mysql, postgres, sqlite and sqlserver",
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to an optional .env file to load before reading configuration")
	root.PersistentFlags().StringVar(&typeMapFileOverride, "type-map-file", "", "override TYPE_MAPPING_FILE_PATH")

	root.AddCommand(newDiffCommand(), newApplyCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadedContext bundles what every subcommand needs: configuration, logging, metrics,
// and the two live connections, already credentialed and pool-tuned.
type loadedContext struct {
	cfg          *config.Config
	log          *zap.Logger
	metricsStore *metrics.Store
	srcConn      *db.Connector
	dstConn      *db.Connector
	srcDSN       string
	dstDSN       string
	typeMapping  *config.TypeMappingProfile
}

func bootstrap(ctx context.Context) (*loadedContext, error) {
	if envFile != "" {
		if err := godotenv.Overload(envFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if typeMapFileOverride != "" {
		cfg.TypeMappingFilePath = typeMapFileOverride
	}

	if err := logger.Init(cfg.DebugMode, cfg.EnableJsonLogging); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.Log

	typeMapping, err := config.LoadProfile(cfg.TypeMappingFilePath)
	if err != nil {
		return nil, fmt.Errorf("load type mapping profile: %w", err)
	}

	metricsStore := metrics.NewMetricsStore()

	vm, err := secrets.NewVaultManager(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init vault manager: %w", err)
	}

	srcConn, srcDSN, err := connect(ctx, cfg, cfg.SrcDB, "source", vm, metricsStore, log)
	if err != nil {
		return nil, err
	}
	dstConn, dstDSN, err := connect(ctx, cfg, cfg.DstDB, "destination", vm, metricsStore, log)
	if err != nil {
		return nil, err
	}

	go server.RunHTTPServer(ctx, cfg, metricsStore, dstConn, log)

	return &loadedContext{
		cfg: cfg, log: log, metricsStore: metricsStore,
		srcConn: srcConn, dstConn: dstConn,
		srcDSN: srcDSN, dstDSN: dstDSN,
		typeMapping: typeMapping,
	}, nil
}

func connect(ctx context.Context, cfg *config.Config, dbCfg config.DatabaseConfig, label string, vm *secrets.VaultManager, metricsStore *metrics.Store, log *zap.Logger) (*db.Connector, string, error) {
	username, password, err := resolveCredentials(ctx, dbCfg, label, vm, log)
	if err != nil {
		return nil, "", err
	}
	dsn, err := db.BuildDSN(dbCfg, username, password)
	if err != nil {
		return nil, "", fmt.Errorf("%s DB: %w", label, err)
	}

	conn, err := db.New(dbCfg.Dialect, dsn, logger.GetGormLogger())
	if err != nil {
		metricsStore.ApplyErrorsTotal.WithLabelValues(dbCfg.Dialect).Inc()
		return nil, "", fmt.Errorf("connect to %s DB: %w", label, err)
	}
	if err := conn.Optimize(cfg.ConnPoolSize, cfg.ConnMaxLifetime); err != nil {
		log.Warn("failed to tune connection pool", zap.String("db", label), zap.Error(err))
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, "", fmt.Errorf("ping %s DB: %w", label, err)
	}
	metricsStore.DBConnections.WithLabelValues(label).Set(1)
	log.Info("connected", zap.String("db", label), zap.String("dialect", dbCfg.Dialect))
	return conn, dsn, nil
}

func rootContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Print the SQL needed to bring the destination schema in line with the source, without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rootContext()
			defer cancel()

			lc, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer closeConnections(lc)

			statements, err := diffStatements(ctx, lc)
			if err != nil {
				return err
			}
			for _, stmt := range statements {
				fmt.Println(stmt.Text + ";")
			}
			lc.log.Info("diff complete", zap.Int("statements", len(statements)))
			return nil
		},
	}
}

func newApplyCommand() *cobra.Command {
	var continueOnError bool
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Diff the source and destination schemas, then execute the generated SQL against the destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rootContext()
			defer cancel()

			lc, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer closeConnections(lc)

			if lc.cfg.ApplyMode != config.ApplyModeApply {
				return fmt.Errorf("refusing to apply: APPLY_MODE is %q, expected %q", lc.cfg.ApplyMode, config.ApplyModeApply)
			}

			statements, err := diffStatements(ctx, lc)
			if err != nil {
				return err
			}
			if len(statements) == 0 {
				lc.log.Info("schemas already match, nothing to apply")
				return nil
			}

			uiprogress.Start()
			bar := uiprogress.AddBar(len(statements)).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return "applying statements"
			})

			applyCtx, applyCancel := context.WithTimeout(ctx, lc.cfg.Timeout)
			defer applyCancel()
			start := time.Now()
			result, err := executor.Apply(applyCtx, lc.dstConn, statements, continueOnError, lc.log, func() { bar.Incr() })
			uiprogress.Stop()
			lc.metricsStore.ApplyDuration.WithLabelValues(lc.cfg.DstDB.Dialect).Observe(time.Since(start).Seconds())
			if err != nil {
				lc.metricsStore.ApplyErrorsTotal.WithLabelValues(lc.cfg.DstDB.Dialect).Inc()
				return fmt.Errorf("apply: %w", err)
			}
			lc.log.Info("apply complete", zap.Int("executed", result.Executed), zap.Int("ignored", result.Ignored))
			return nil
		},
	}
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "accumulate and report statement failures instead of aborting the batch at the first one")
	return cmd
}

// diffStatements introspects both connections, diffs them, and renders the result
// into dialect-correct statements for the destination.
func diffStatements(ctx context.Context, lc *loadedContext) ([]sqlgen.Statement, error) {
	start := time.Now()
	lc.metricsStore.DiffRunning.Set(1)
	defer lc.metricsStore.DiffRunning.Set(0)

	// The source DB holds the desired end-state; the destination DB holds the live
	// schema being migrated. internal/differ.Diff takes (current, desired), so the
	// destination plays "current" and the source plays "desired" here.
	desiredModel, err := introspect.Introspect(ctx, lc.cfg.SrcDB.Dialect, lc.srcDSN, lc.typeMapping)
	if err != nil {
		return nil, fmt.Errorf("introspect source: %w", err)
	}
	currentModel, err := introspect.Introspect(ctx, lc.cfg.DstDB.Dialect, lc.dstDSN, lc.typeMapping)
	if err != nil {
		return nil, fmt.Errorf("introspect destination: %w", err)
	}

	operations, err := differ.Diff(currentModel, desiredModel)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	for _, op := range operations {
		lc.metricsStore.OperationsEmitted.WithLabelValues(op.Kind().String()).Inc()
	}

	gen, err := sqlgen.Create(lc.cfg.DstDB.Dialect, currentModel, desiredModel)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}
	statements, err := sqlgen.GenerateSql(operations, gen)
	if err != nil {
		return nil, fmt.Errorf("generate sql: %w", err)
	}

	lc.metricsStore.DiffDuration.Observe(time.Since(start).Seconds())
	for range statements {
		lc.metricsStore.StatementsGenerated.WithLabelValues(lc.cfg.DstDB.Dialect).Inc()
	}
	return statements, nil
}

func closeConnections(lc *loadedContext) {
	if lc.srcConn != nil {
		_ = lc.srcConn.Close()
	}
	if lc.dstConn != nil {
		_ = lc.dstConn.Close()
	}
}
