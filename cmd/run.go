package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abhisek/phraseweaver/internal/config"
	"github.com/abhisek/phraseweaver/internal/logging"
	"github.com/abhisek/phraseweaver/internal/store"
	"github.com/abhisek/phraseweaver/internal/ui/theme"
)

// appEnv bundles what every command needs after flags are parsed.
type appEnv struct {
	cfg    *config.Config
	logger *log.Logger
	styles *theme.Styles
}

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	config.KeyDB:        "db",
	config.KeyLogLevel:  "log-level",
	config.KeyBatchSize: "limit",
}

// loadEnv resolves configuration and builds the logger and styles.
func loadEnv(cmd *cobra.Command) (*appEnv, error) {
	dataDir, err := store.DataDir()
	if err != nil {
		return nil, err
	}

	loader := config.NewLoader(dataDir)
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		loader.SetConfigFile(p)
	}
	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := loader.BindFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	noColor = noColor || os.Getenv("NO_COLOR") != ""

	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: cfg.LogLevel, NoColor: noColor})
	if err != nil {
		return nil, err
	}
	if used := loader.ConfigFileUsed(); used != "" {
		logger.Debug("Loaded config", "file", used)
	} else {
		logger.Debug("No config file, using defaults", "looked_for", config.DefaultFile(dataDir))
	}

	return &appEnv{cfg: cfg, logger: logger, styles: theme.New(noColor)}, nil
}

// resolveDBPath returns the configured database path (--db flag, then
// PHRASEWEAVER_DB, then config file), falling back to the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore loads the environment and opens the database.
func openStore(cmd *cobra.Command) (*appEnv, *store.Store, error) {
	env, err := loadEnv(cmd)
	if err != nil {
		return nil, nil, err
	}
	dbPath, err := resolveDBPath(env.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	env.logger.Debug("Opened database", "path", dbPath)
	return env, st, nil
}
