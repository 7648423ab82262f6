package main

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/adapters/file"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/persistence/middleware"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/aretw0/espalier/pkg/schema"
	"github.com/aretw0/espalier/pkg/workspace"
	"github.com/spf13/cobra"
)

// getStore returns the default file-backed store under <dir>/.espalier/documents.
func getStore(cmd *cobra.Command) *file.Store {
	projectDir, _ := cmd.Flags().GetString("dir")
	if projectDir == "" {
		projectDir = "."
	}
	storePath := filepath.Join(projectDir, ".espalier", "documents")
	return file.New(storePath)
}

// buildStore constructs the snapshot store selected by the --store flag,
// wrapped in the persistence middlewares the flags enable.
// The second return value releases the store's resources, if any.
func buildStore(cmd *cobra.Command) (ports.SnapshotStore, func(), error) {
	backend, _ := cmd.Flags().GetString("store")

	var store ports.SnapshotStore
	cleanup := func() {}

	switch backend {
	case "memory":
		store = memory.NewStore()
	case "file", "":
		store = getStore(cmd)
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		ttl, _ := cmd.Flags().GetDuration("redis-ttl")

		var opts []redis.Option
		if ttl > 0 {
			opts = append(opts, redis.WithTTL(ttl))
		}
		redisStore := redis.New(addr, password, db, opts...)
		store = redisStore
		cleanup = func() { _ = redisStore.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s (supported: file, memory, redis)", backend)
	}

	var mws []middleware.Middleware
	if patterns, _ := cmd.Flags().GetStringSlice("mask"); len(patterns) > 0 {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewPIIMiddleware(patterns))
	}
	if keyHex, _ := cmd.Flags().GetString("encryption-key"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			cleanup()
			return nil, nil, fmt.Errorf("encryption key must be 64 hex characters (AES-256)")
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	return middleware.Chain(store, mws...), cleanup, nil
}

// buildManager constructs the workspace manager for server commands, wiring
// the catalog's connection validator when --catalog is set.
func buildManager(cmd *cobra.Command) (*workspace.Manager, func(), error) {
	store, cleanup, err := buildStore(cmd)
	if err != nil {
		return nil, nil, err
	}

	var docOpts []espalier.Option
	if catalogPath, _ := cmd.Flags().GetString("catalog"); catalogPath != "" {
		cat, err := schema.LoadCatalog(catalogPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		docOpts = append(docOpts, espalier.WithConnectionValidator(registry.FromCatalog(cat)))
	}
	if acyclic, _ := cmd.Flags().GetBool("acyclic"); acyclic {
		docOpts = append(docOpts, espalier.WithAcyclic())
	}

	manager := workspace.NewManager(store, workspace.WithDocumentOptions(docOpts...))
	return manager, cleanup, nil
}

// addStoreFlags registers the persistence flags shared by server commands.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", "file", "Snapshot store backend: 'file', 'memory' or 'redis'")
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis address (only for --store redis)")
	cmd.Flags().String("redis-password", "", "Redis password (only for --store redis)")
	cmd.Flags().Int("redis-db", 0, "Redis database number (only for --store redis)")
	cmd.Flags().Duration("redis-ttl", 0, "Document expiration, 0 keeps documents forever (only for --store redis)")
	cmd.Flags().Bool("acyclic", false, "Reject connections that would close a cycle")
	cmd.Flags().StringSlice("mask", nil, "Mask configuration values whose keys match these regexps before persisting")
	cmd.Flags().String("encryption-key", "", "Encrypt stored snapshots with this AES-256 key (64 hex characters)")
}
