package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dbschema/schemadiff/internal/config"
	"github.com/dbschema/schemadiff/internal/secrets"
)

// resolveCredentials follows the teacher's main.go loadCredentials precedence: a
// directly-configured password wins, falling back to the Vault-backed secret manager
// at dbCfg.VaultSecretPath (under the fixed "username"/"password" KV v2 keys) when no
// password is set in the environment.
func resolveCredentials(ctx context.Context, dbCfg config.DatabaseConfig, dbLabel string, vm *secrets.VaultManager, log *zap.Logger) (username, password string, err error) {
	if dbCfg.Password != "" {
		if dbCfg.User == "" {
			return "", "", fmt.Errorf("password provided for %s DB, but username is missing", dbLabel)
		}
		return dbCfg.User, dbCfg.Password, nil
	}

	if dbCfg.VaultSecretPath == "" {
		return dbCfg.User, dbCfg.Password, nil
	}
	if vm == nil || !vm.IsEnabled() {
		return "", "", fmt.Errorf("%s DB has a vault secret path configured but Vault is not enabled", dbLabel)
	}

	getCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	creds, err := vm.GetCredentials(getCtx, dbCfg.VaultSecretPath, "username", "password")
	if err != nil {
		return "", "", fmt.Errorf("resolve credentials for %s DB: %w", dbLabel, err)
	}
	username = creds.Username
	if username == "" {
		username = dbCfg.User
	}
	log.Info("resolved credentials from Vault", zap.String("db", dbLabel), zap.String("path", dbCfg.VaultSecretPath))
	return username, creds.Password, nil
}

func dialectLabel(dbCfg config.DatabaseConfig) string {
	return strings.ToLower(dbCfg.Dialect)
}
