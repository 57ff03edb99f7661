// Package cli implements the coach command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fish0048-ai/my-ai-coach/internal/auth"
	"github.com/fish0048-ai/my-ai-coach/internal/cache"
	"github.com/fish0048-ai/my-ai-coach/internal/config"
	"github.com/fish0048-ai/my-ai-coach/internal/logging"
	"github.com/fish0048-ai/my-ai-coach/internal/service"
	"github.com/fish0048-ai/my-ai-coach/internal/store"
	"github.com/fish0048-ai/my-ai-coach/internal/strava"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Training cycle analytics for runners and lifters",
	Long: `coach keeps your workouts and body measurements in a local database and
analyses them: training phase detection, metric trends, personal records and
running statistics.

Run without a subcommand to open the terminal dashboard.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.coach/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level from the config")
}

// logMode picks where a command's logs go.
type logMode int

const (
	logToFile logMode = iota // file only, for the full screen UI
	logToConsole
	logToStderr // stdout belongs to a protocol
)

// env is the wiring shared by every command that touches data.
type env struct {
	cfg    *config.Config
	store  *store.Store
	cache  *cache.TTLCache
	query  *service.QueryService
	closer io.Closer
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		log.Warnf("closing store: %s", err)
	}
	e.closer.Close()
}

// loadConfig reads the config file. A missing default config is created
// from the example and the defaults are used for this run.
func loadConfig(stderr io.Writer) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}

	if errors.Is(err, config.ErrNoConfig) {
		if cfgFile != "" {
			return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
		}
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		dir, _ := config.ConfigDir()
		fmt.Fprintf(stderr, "Created an example config at %s/config.json\n", dir)
		defaults := config.DefaultConfig()
		cfg, err = &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setup loads the config, configures logging and opens the store.
func setup(cmd *cobra.Command, mode logMode) (*env, error) {
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	params := logging.SetupParams{LogLevel: level, LogFormatJSON: cfg.Log.JSON}
	switch mode {
	case logToFile:
		params.LogFile, err = cfg.LogFile()
		if err != nil {
			return nil, err
		}
	case logToConsole:
		params.LogFile, _ = cfg.LogFile()
		params.Console = true
		params.ConsoleWriter = cmd.ErrOrStderr()
	case logToStderr:
		params.LogFile, _ = cfg.LogFile()
		params.Console = true
		params.ConsoleWriter = os.Stderr
	}
	closer := logging.Setup(params)

	dbPath, err := cfg.DBPath()
	if err != nil {
		closer.Close()
		return nil, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := cache.New(cfg.Analysis.CacheSizeMB, time.Duration(cfg.Analysis.CacheTTLSeconds)*time.Second)
	return &env{
		cfg:    cfg,
		store:  st,
		cache:  c,
		query:  service.NewQueryService(st, c, cfg.Analysis.CycleWeeks),
		closer: closer,
	}, nil
}

// activitySource returns a Strava client when credentials and tokens are
// stored. A nil source makes strava syncs report missing credentials.
func (e *env) activitySource(ctx context.Context) service.ActivitySource {
	if err := e.cfg.ValidateStrava(); err != nil {
		log.Debugf("strava disabled: %s", err)
		return nil
	}
	ts, err := auth.FromStore(ctx, e.oauthConfig(), e.store)
	if errors.Is(err, store.ErrNoAuth) {
		return nil
	}
	if err != nil {
		log.Warnf("loading stored strava auth: %s", err)
		return nil
	}
	return strava.NewClient(ts)
}

func (e *env) syncService(ctx context.Context) *service.SyncService {
	return service.NewSyncService(e.activitySource(ctx), e.store, e.query)
}
