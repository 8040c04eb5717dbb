package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/CTAG07/ngramchain/pkg/ngram"
	"github.com/CTAG07/ngramchain/pkg/store"
	"github.com/spf13/cobra"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	configPath string
	logLevel   string

	config *Config
	logger *slog.Logger
	db     *sql.DB
	store  *store.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "ngramchain",
		Short: "Learn sentences and generate new ones with n-gram chains",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true, // don't print help when subcommands return an error
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "./config.json", "path to the JSON config file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	cmd.AddCommand(
		newLearnCmd(a),
		newGenerateCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newListCmd(a),
		newStatsCmd(a),
		newRemoveCmd(a),
		newVersionCmd(),
	)

	return cmd
}

// open loads the config, builds the logger and opens the snapshot store.
func (a *app) open(cmd *cobra.Command) error {
	config, err := LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		config.LogLevel = a.logLevel
	}
	a.config = config
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLogLevel(config.LogLevel)}))

	if err = ensureDataDir(config.DatabasePath); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := initDB(config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = store.SetupSchema(db); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to setup snapshot schema: %w", err)
	}
	st, err := store.NewStore(db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}
	st.SetLogger(a.logger)

	a.db = db
	a.store = st
	a.logger.Debug("Snapshot store opened", "database", config.DatabasePath)
	return nil
}

func (a *app) close() error {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.db != nil {
		err := a.db.Close()
		a.db = nil
		if err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

// modelKind returns the kind of the named model. For a model that does not
// exist yet it returns the requested variant, or the configured one.
func (a *app) modelKind(ctx context.Context, name, variant string) (kind store.Kind, exists bool, err error) {
	kind, err = a.store.Kind(ctx, name)
	switch {
	case err == nil:
		if variant != "" && store.Kind(variant) != kind {
			return "", true, fmt.Errorf("model '%s' is %s, not %s: %w", name, kind, variant, store.ErrKindMismatch)
		}
		return kind, true, nil
	case errors.Is(err, store.ErrNotFound):
		if variant == "" {
			variant = a.config.Model.Variant
		}
		switch k := store.Kind(variant); k {
		case store.KindString, store.KindIndexed:
			return k, false, nil
		default:
			return "", false, fmt.Errorf("unknown model variant %q", variant)
		}
	default:
		return "", false, err
	}
}

// loadChain restores the named string model, or creates an empty one from the config.
func (a *app) loadChain(ctx context.Context, name string, exists bool) (*ngram.Chain, error) {
	if !exists {
		return ngram.NewChain(a.config.Model.chainOptions(a.logger)...), nil
	}
	return a.store.LoadChain(ctx, name, a.restoreOptions()...)
}

// loadIndexed restores the named indexed model, or creates an empty one from the config.
func (a *app) loadIndexed(ctx context.Context, name string, exists bool) (*ngram.IndexedChain, error) {
	if !exists {
		opts := append(a.config.Model.chainOptions(a.logger), ngram.WithDefaultConfig(a.config.Model.indexedConfig()))
		return ngram.NewIndexedChain(opts...), nil
	}
	return a.store.LoadIndexed(ctx, name, a.restoreOptions()...)
}

// restoreOptions returns the options used for every stored model. An indexed
// snapshot does not record its separation, so the configured one is passed in.
func (a *app) restoreOptions() []ngram.Option {
	return []ngram.Option{
		ngram.WithLogger(a.logger),
		ngram.WithSeparation(a.config.Model.Separation),
	}
}

// commandContext returns the context of cmd, or a background context when it has none.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
