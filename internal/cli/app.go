// Package cli is the questlog command line: cobra commands over the task and
// quest collections.
package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/questlog/internal/collection"
	"github.com/idilsaglam/questlog/internal/config"
	"github.com/idilsaglam/questlog/internal/generate"
	"github.com/idilsaglam/questlog/internal/logger"
	"github.com/idilsaglam/questlog/internal/metrics"
	"github.com/idilsaglam/questlog/internal/model"
	"github.com/idilsaglam/questlog/internal/store"
	"github.com/idilsaglam/questlog/internal/ui"
)

// Version is stamped at build time.
var Version = "dev"

// App holds what one invocation needs. Stores are opened on first use.
type App struct {
	cfg     *config.Config
	backend store.Backend
	owned   bool // backend opened here, close it on exit
	log     *slog.Logger
	out     io.Writer
	errOut  io.Writer
	genFor  func(model.Kind) generate.Generator

	cfgPath string
	kindArg string
	theme   string
	color   string
	kind    model.Kind

	tasks  *collection.Store[model.TaskCategory]
	quests *collection.Store[model.QuestCategory]
}

type Option func(*App)

// WithConfig skips config loading.
func WithConfig(cfg *config.Config) Option { return func(a *App) { a.cfg = cfg } }

// WithBackend uses b instead of opening the configured driver.
func WithBackend(b store.Backend) Option { return func(a *App) { a.backend = b } }

func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) { a.out, a.errOut = out, errOut }
}

// WithGenerators replaces the configured OpenAI client.
func WithGenerators(fn func(model.Kind) generate.Generator) Option {
	return func(a *App) { a.genFor = fn }
}

func newApp(opts ...Option) *App {
	a := &App{out: os.Stdout, errOut: os.Stderr}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Execute runs the command line and returns the process exit code:
// 0 ok, 1 runtime error, 2 usage error.
func Execute(ctx context.Context, args []string, opts ...Option) int {
	a := newApp(opts...)
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	a.close()
	if err == nil {
		return 0
	}
	ui.Fail(a.errOut, err.Error())
	if isUsage(err) || strings.HasPrefix(err.Error(), "unknown command") {
		return 2
	}
	return 1
}

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "questlog",
		Short:         "Track development tasks and RPG quests",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (default "+config.DefaultConfigFile()+")")
	pf.StringVarP(&a.kindArg, "kind", "k", "", "collection to work on: task or quest")
	pf.StringVar(&a.theme, "theme", "", "color theme: "+strings.Join(ui.Themes, ", "))
	pf.StringVar(&a.color, "color", "", "when to use color: auto, always or never (NO_COLOR is honored)")

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.showCmd(),
		a.doneCmd(),
		a.rmCmd(),
		a.editCmd(),
		a.statsCmd(),
		a.generateCmd(),
		a.tuiCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command) error {
	if a.cfg == nil {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	logger.Init(a.cfg.Log.Level, a.cfg.Log.JSON)
	a.log = logger.Get()

	theme := a.cfg.UI.Theme
	if a.theme != "" {
		theme = a.theme
	}
	ui.SetTheme(theme)
	mode, err := a.colorMode()
	if err != nil {
		return err
	}
	ui.SetColorMode(mode)

	kindArg := a.cfg.UI.Kind
	if a.kindArg != "" {
		kindArg = a.kindArg
	}
	kind, ok := model.ParseKind(kindArg)
	if !ok {
		return usagef("unknown kind %q (task or quest)", kindArg)
	}
	a.kind = kind

	if a.backend == nil {
		s := a.cfg.Storage
		b, err := store.Open(cmd.Context(), store.Options{
			Driver:        s.Driver,
			Dir:           s.Dir,
			SQLitePath:    s.SQLite,
			PostgresDSN:   s.Postgres,
			RedisAddr:     s.Redis.Addr,
			RedisPassword: s.Redis.Password,
			RedisDB:       s.Redis.DB,
			RedisPrefix:   s.Redis.Prefix,
		})
		if err != nil {
			return err
		}
		a.backend, a.owned = b, true
	}
	a.log.Debug("ready", "driver", a.cfg.Storage.Driver, "kind", a.kind, "config", a.cfg.File)
	return nil
}

// colorMode resolves --color, then NO_COLOR, then ui.color.
func (a *App) colorMode() (ui.ColorMode, error) {
	arg := a.cfg.UI.Color
	if a.color != "" {
		arg = a.color
	} else if os.Getenv("NO_COLOR") != "" {
		arg = string(ui.ColorNever)
	}
	mode, ok := ui.ParseColorMode(arg)
	if !ok {
		return "", usagef("unknown color mode %q (auto, always or never)", arg)
	}
	return mode, nil
}

func (a *App) close() {
	if a.owned && a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.log.Warn("close storage", "err", err)
		}
	}
}

func (a *App) storeOptions(key string) []collection.Option {
	return []collection.Option{
		collection.WithLogger(a.log.With("collection", key)),
		collection.WithObserver(metrics.StoreObserver{}),
		collection.WithTimeout(a.cfg.Storage.Timeout),
	}
}

func (a *App) taskStore() *collection.Store[model.TaskCategory] {
	if a.tasks == nil {
		key := a.cfg.Storage.TasksKey
		a.tasks = collection.New[model.TaskCategory](a.backend, key, a.storeOptions(key)...)
	}
	return a.tasks
}

func (a *App) questStore() *collection.Store[model.QuestCategory] {
	if a.quests == nil {
		key := a.cfg.Storage.QuestsKey
		a.quests = collection.New[model.QuestCategory](a.backend, key, a.storeOptions(key)...)
	}
	return a.quests
}

// generator returns nil when AI generation is not configured.
func (a *App) generator(kind model.Kind) generate.Generator {
	if a.genFor != nil {
		return a.genFor(kind)
	}
	if !a.cfg.AI.Enabled() {
		return nil
	}
	return generate.NewOpenAIClient(a.cfg.AI.APIKey, kind,
		generate.WithBaseURL(a.cfg.AI.BaseURL),
		generate.WithModel(a.cfg.AI.Model),
		generate.WithHTTPClient(&http.Client{Timeout: a.cfg.AI.Timeout}),
	)
}

// view binds the commands to the collection picked with --kind.
func (a *App) view() view {
	if a.kind == model.KindQuest {
		return &kindView[model.QuestCategory]{
			kind:       model.KindQuest,
			name:       "quests",
			noun:       "quest",
			store:      a.questStore(),
			categories: model.QuestCategories,
			fallback:   model.QuestDefault,
			gen:        a.generator(model.KindQuest),
		}
	}
	return &kindView[model.TaskCategory]{
		kind:       model.KindTask,
		name:       "tasks",
		noun:       "task",
		store:      a.taskStore(),
		categories: model.TaskCategories,
		fallback:   model.TaskGeneral,
		gen:        a.generator(model.KindTask),
	}
}
