package finddoc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/l2cup/finddoc/pkg/action"
	"github.com/l2cup/finddoc/pkg/cache"
	"github.com/l2cup/finddoc/pkg/color"
	"github.com/l2cup/finddoc/pkg/config"
	"github.com/l2cup/finddoc/pkg/crawler"
	"github.com/l2cup/finddoc/pkg/crawler/dir"
	"github.com/l2cup/finddoc/pkg/crawler/ignore"
	"github.com/l2cup/finddoc/pkg/dispatcher"
	fderrors "github.com/l2cup/finddoc/pkg/errors"
	"github.com/l2cup/finddoc/pkg/log"
	"github.com/l2cup/finddoc/pkg/preview"
	"github.com/l2cup/finddoc/pkg/result"
	"github.com/l2cup/finddoc/pkg/runner"
	"github.com/l2cup/finddoc/pkg/updater"
	"github.com/pkg/errors"
)

const historyFileName = "history"

var _ runner.Runner = (*App)(nil)
var _ runner.Registrator = (*App)(nil)

// Options come from the command line.
type Options struct {
	ConfigPath string
	Preview    bool
	Verbose    bool
	// Executable is the program fzf runs for previews, os.Executable() when empty.
	Executable string
	// Selector is the fzf binary, looked up on PATH when empty.
	Selector string
}

// App holds everything one invocation needs. It is loaded once and only read
// afterwards.
type App struct {
	runner.Group

	Stdout io.Writer
	Stderr io.Writer

	Options          Options
	Logger           *log.Logger
	Configuration    *config.SystemConfig
	Dispatcher       *dispatcher.Dispatcher
	ResultRetriever  result.Retriever
	DirectoryCrawler crawler.DirCrawler
	Cache            *cache.Store
	Updater          *updater.Updater
	Actions          *action.Dispatcher
	Previewer        *preview.Previewer
}

func New() *App {
	return &App{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Load reads the environment and configuration and wires the components.
func (a *App) Load(opts Options) error {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.GetEnv(config.EnvConfigPath, config.DefaultConfigPath())
	}
	a.Options = opts

	if err := config.LoadEnvFile(filepath.Join(filepath.Dir(opts.ConfigPath), config.EnvFileName)); err != nil {
		return fderrors.NewInternalError("couldn't load env file", fderrors.ConfigError, err)
	}

	verbosity := log.Verbosity(config.GetEnv(config.EnvLogVerbosity, string(log.ErrorVerbosity)))
	if opts.Verbose {
		verbosity = log.DebugVerbosity
	}
	logger, err := log.NewLogger(&log.Config{LogVerbosity: verbosity})
	if err != nil {
		return fderrors.NewInternalError("couldn't initialize logger", fderrors.ConfigError, err)
	}
	a.Logger = logger

	syscfg, err := config.LoadConfigFile(opts.ConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("[syscfg] no config file, using defaults", "path", opts.ConfigPath)
		syscfg, err = config.Default()
	}
	if err != nil {
		return fderrors.NewInternalError("couldn't load config", fderrors.ConfigError, err, "path", opts.ConfigPath)
	}
	a.Configuration = syscfg

	// Configured patterns extend the defaults, cache parts stay ignored.
	filter, err := ignore.New(append(append([]string{}, ignore.DefaultPatterns...), syscfg.Ignore...))
	if err != nil {
		return fderrors.NewInternalError("invalid ignore pattern", fderrors.ConfigError, err)
	}

	a.DirectoryCrawler = dir.NewCrawlerImplementation(&dir.Config{
		Crawler: crawler.New(logger),
		Workers: syscfg.Workers,
		Ignore:  filter,
	})

	a.Cache, err = cache.New(&cache.Config{
		Dir:     syscfg.CacheDir,
		Crawler: a.DirectoryCrawler,
		Logger:  logger,
	})
	if err != nil {
		return fderrors.NewInternalError("couldn't open cache", fderrors.CacheError, err, "dir", syscfg.CacheDir)
	}

	a.Dispatcher = dispatcher.New(&dispatcher.Config{
		Logger: logger,
	})

	a.ResultRetriever = result.NewRetrieverImplementation(a.Dispatcher, logger)
	a.Register(a.ResultRetriever)

	a.Updater = updater.New(&updater.Config{
		Store:      a.Cache,
		Dispatcher: a.Dispatcher,
		Logger:     logger,
	})

	a.Actions = action.New(&action.Config{
		Logger: logger,
		Update: func(ctx context.Context) error {
			_, err := a.Update(ctx)
			return err
		},
	})

	a.Previewer = preview.New(&preview.Config{})

	return nil
}

// Roots returns the canonical configured roots. Paths that cannot be resolved
// are reported once and skipped.
func (a *App) Roots() []string {
	roots, errs := a.Configuration.Roots()
	for _, err := range errs {
		a.printError(err)
	}
	return roots
}

func (a *App) printError(err error) {
	fmt.Fprintln(a.Stderr, color.Red(err.Error()))
}

// Close stops the background runners and flushes the logger.
func (a *App) Close() {
	a.Stop()
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}
