package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hengadev/serdex"
	"github.com/hengadev/serdex/internal/monitoring"
	s3bucket "github.com/hengadev/serdex/providers/s3"
)

// objectStore is the part of the S3 provider used for s3:// locations.
type objectStore interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Create(ctx context.Context, bucket, key, contentType string) (io.WriteCloser, error)
}

type app struct {
	v         *viper.Viper
	logger    *serdex.StructuredLogger
	collector *monitoring.PrometheusCollector
	metricsTo io.Writer
	cfg       serdex.Config

	newStore func(ctx context.Context, logger *serdex.StructuredLogger) (objectStore, error)
	store    objectStore
}

func newApp() *app {
	return &app{
		v: viper.New(),
		newStore: func(ctx context.Context, logger *serdex.StructuredLogger) (objectStore, error) {
			return s3bucket.NewFromEnvironment(ctx, logger)
		},
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "serdex",
		Short: "Convert structured documents between formats",
		Long: fmt.Sprintf(`serdex (v%s)

Converts documents between the registered formats (%s) and checks
serde struct tags in Go source files.`, serdex.Version, strings.Join(serdex.Formats(), ", ")),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "console", "log format (json, text, console)")
	root.PersistentFlags().Bool("metrics", false, "write Prometheus metrics to stderr on exit")
	root.PersistentFlags().String("config", "", "YAML file with naming and depth defaults")

	root.AddCommand(a.convertCmd(), a.vetCmd(), a.versionCmd())
	return root
}

// execute runs cmd with args and flushes metrics whatever the outcome.
func (a *app) execute(cmd *cobra.Command, args []string) error {
	cmd.SetArgs(args)
	err := cmd.Execute()
	if a.collector != nil {
		out := a.metricsTo
		if out == nil {
			out = cmd.ErrOrStderr()
		}
		a.collector.WritePrometheus(out)
	}
	return err
}

// setup loads .env files, binds flags and environment, and installs the
// process-wide configuration and observability hook.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	a.v.SetEnvPrefix("serdex")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	level, err := monitoring.ParseLogLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	format, err := monitoring.ParseLogFormat(a.v.GetString("log-format"))
	if err != nil {
		return err
	}
	a.logger = serdex.NewStructuredLogger(serdex.LoggerConfig{
		Level:     level,
		Format:    format,
		Output:    cmd.ErrOrStderr(),
		Component: "cli",
	})

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	cfg.Apply()
	a.cfg = cfg

	hook := serdex.NewLoggingHook(a.logger)
	if a.v.GetBool("metrics") {
		a.collector = serdex.NewPrometheusCollector()
		hook = serdex.NewCompositeHook(hook, serdex.NewMetricsHook(a.collector))
	}
	serdex.SetDefaultObservabilityHook(hook)
	return nil
}

func (a *app) loadConfig() (serdex.Config, error) {
	var (
		cfg serdex.Config
		err error
	)
	if path := a.v.GetString("config"); path != "" {
		cfg, err = serdex.LoadConfigFile(path)
	} else {
		cfg, err = serdex.LoadConfigFromEnvironment()
	}
	if err != nil {
		return serdex.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return serdex.Config{}, err
	}
	a.logger.Debug("configuration loaded",
		"field_rename", cfg.FieldRename, "enum_rename", cfg.EnumRename, "max_depth", cfg.MaxDepth)
	return cfg, nil
}

// objects returns the S3 store, creating it on first use.
func (a *app) objects(ctx context.Context) (objectStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := a.newStore(ctx, a.logger)
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}
