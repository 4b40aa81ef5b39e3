// Command cliptl translates copied text and shows the result in a popup.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ZaguanLabs/cliptl"
	"github.com/ZaguanLabs/cliptl/cache"
	"github.com/ZaguanLabs/cliptl/config"
	"github.com/ZaguanLabs/cliptl/provider"
	"github.com/ZaguanLabs/cliptl/trigger"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = cliptl.Version
	commit    = cliptl.GitCommit
	buildDate = cliptl.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	return newApp(stdout, stderr).execute(context.Background(), args)
}

// clipboardDevice is the system clipboard as seen by the watch command.
type clipboardDevice interface {
	trigger.ClipboardReader
	trigger.ClipboardWriter
	Available() bool
}

// app carries what every subcommand shares. Configuration is loaded lazily
// so that version and help work without a config file.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	clipboard      clipboardDevice

	configPath string
	verbose    bool

	store  *config.Store
	logger *zap.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdin:     os.Stdin,
		stdout:    stdout,
		stderr:    stderr,
		clipboard: trigger.SystemClipboard{},
		logger:    zap.NewNop(),
	}
}

func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	defer func() { _ = a.logger.Sync() }()
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   cliptl.Name,
		Short: cliptl.Description,
		Long: `cliptl - clipboard translator.

Watches the clipboard (or takes text from the command line), translates it
with the configured provider and keeps every translation in a local
translation memory so repeated copies never reach the network twice.

Providers:
  google   Google Translate web endpoint (no key)
  cloud    Google Cloud Translation v2 (api key)
  openai   Any OpenAI-compatible chat completion API`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default: ./config.yaml or "+config.Dir()+"/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		a.watchCmd(),
		a.translateCmd(),
		a.detectCmd(),
		a.historyCmd(),
		a.languagesCmd(),
		a.memoryCmd(),
		a.providersCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	if a.store != nil {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.store = config.NewStore(*cfg)
	a.logger = setupLogger(cfg.Env, a.verbose, a.stderr)
	return nil
}

// setupLogger logs human-readable output in development and JSON warnings
// otherwise; verbose lowers the level to debug.
func setupLogger(env string, verbose bool, w io.Writer) *zap.Logger {
	var (
		enc   zapcore.Encoder
		level = zap.WarnLevel
	)
	if env == "development" {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		level = zap.InfoLevel
	} else {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	if verbose {
		level = zap.DebugLevel
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

// openMemory opens the configured backend. A store that cannot be opened is
// logged and replaced by a disabled memory so translation keeps working.
func (a *app) openMemory(ctx context.Context) *cache.Memory {
	cfg := a.store.Snapshot().Memory
	opts := []cache.Option{cache.WithLogger(a.logger)}

	var (
		backend cache.Backend
		err     error
	)
	switch cfg.Backend {
	case config.BackendSQLite:
		backend, err = cache.OpenSQLite(ctx, cfg.Path)
	case config.BackendRedis:
		backend, err = cache.NewRedisStore(ctx, cache.RedisConfig{
			URL:       cfg.RedisURL,
			TTL:       cfg.TTL,
			KeyPrefix: cfg.KeyPrefix,
		})
	case config.BackendMemory:
		backend = cache.NewInMemoryStore(cfg.TTL)
	default:
		return cache.Disabled(opts...)
	}
	if err != nil {
		a.logger.Warn("translation memory unavailable",
			zap.String("backend", cfg.Backend),
			zap.Error(err))
		return cache.Disabled(opts...)
	}
	return cache.New(backend, opts...)
}

func (a *app) newTranslator(memory *cache.Memory, providers cliptl.ProviderSource) *cliptl.Translator {
	cfg := a.store.Snapshot()
	return cliptl.NewTranslator(cfg.TargetLang, providers,
		cliptl.WithMemory(memory),
		cliptl.WithLogger(a.logger),
	)
}

func (a *app) registry() *provider.Registry {
	return provider.FromConfig(a.store)
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", cliptl.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", buildDate)
			}
		},
	}
}
