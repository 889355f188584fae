package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/questlog/internal/model"
	"github.com/idilsaglam/questlog/internal/server"
)

// args wraps a cobra validator so its failures count as usage errors.
func args(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := fn(cmd, a); err != nil {
			return &usageError{msg: fmt.Sprintf("%s (usage: %s)", err, cmd.UseLine())}
		}
		return nil
	}
}

func (a *App) addCmd() *cobra.Command {
	var opt itemOptions
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add an item (the title may be several words)",
		Example: `  questlog add "Fix login bug" -c bug -a dana
  questlog --kind quest add Slay the dragon -c combat`,
		Args: args(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			opt.title = strings.Join(argv, " ")
			return a.view().Add(cmd.OutOrStdout(), opt)
		},
	}
	cmd.Flags().StringVarP(&opt.description, "description", "d", "", "longer description")
	cmd.Flags().StringVarP(&opt.category, "category", "c", "", "category (defaults to general/default)")
	cmd.Flags().StringVarP(&opt.assignee, "assign", "a", "", "assignee")
	return cmd
}

func (a *App) listCmd() *cobra.Command {
	var opt listOptions
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items, newest first",
		Args:    args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.view().List(cmd.OutOrStdout(), opt)
		},
	}
	cmd.Flags().BoolVar(&opt.group, "group", false, "group by active/completed")
	cmd.Flags().StringVarP(&opt.search, "query", "q", "", "search title and description")
	cmd.Flags().StringVarP(&opt.category, "category", "c", "", "only this category")
	cmd.Flags().StringVarP(&opt.status, "status", "s", "", "active, completed or all")
	return cmd
}

func (a *App) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <ref>",
		Short: "Show every field of one item",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			return a.view().Show(cmd.OutOrStdout(), argv[0])
		},
	}
}

func (a *App) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "done <ref>",
		Aliases: []string{"toggle"},
		Short:   "Toggle an item between active and completed",
		Long:    "Toggle an item. <ref> is a list number from `ls` or an id (a unique prefix is enough).",
		Args:    args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			return a.view().Toggle(cmd.OutOrStdout(), argv[0])
		},
	}
}

func (a *App) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <ref>",
		Aliases: []string{"delete"},
		Short:   "Remove an item",
		Args:    args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			return a.view().Remove(cmd.OutOrStdout(), argv[0])
		},
	}
}

func (a *App) editCmd() *cobra.Command {
	var opt itemOptions
	cmd := &cobra.Command{
		Use:   "edit <ref>",
		Short: "Change fields of an item",
		Example: `  questlog edit 2 --title "Fix logout bug"
  questlog edit 3f2a -c feature --unassign`,
		Args: args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			opt.set = cmd.Flags().Changed
			if opt.unassign && opt.set("assign") {
				return usagef("--assign and --unassign are mutually exclusive")
			}
			return a.view().Edit(cmd.OutOrStdout(), argv[0], opt)
		},
	}
	cmd.Flags().StringVar(&opt.title, "title", "", "new title")
	cmd.Flags().StringVarP(&opt.description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&opt.category, "category", "c", "", "new category")
	cmd.Flags().StringVarP(&opt.assignee, "assign", "a", "", "new assignee")
	cmd.Flags().BoolVar(&opt.unassign, "unassign", false, "remove the assignee")
	return cmd
}

func (a *App) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show progress and the busiest category",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.view().Stats(cmd.OutOrStdout())
		},
	}
}

func (a *App) generateCmd() *cobra.Command {
	var (
		add      bool
		category string
	)
	cmd := &cobra.Command{
		Use:   "generate <prompt...>",
		Short: "Draft a title and description with an AI model",
		Example: `  questlog generate rate limit the login endpoint --add
  questlog --kind quest generate a haunted lighthouse`,
		Args: args(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			return a.view().Generate(cmd.Context(), cmd.OutOrStdout(), strings.Join(argv, " "), add, category)
		},
	}
	cmd.Flags().BoolVar(&add, "add", false, "add the generated item")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category for the added item")
	return cmd
}

func (a *App) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.view().Interactive()
		},
	}
}

func (a *App) exportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection to stdout",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.view().Export(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	return cmd
}

func (a *App) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add items from a JSON or YAML export",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			return a.view().Import(cmd.OutOrStdout(), argv[0])
		},
	}
}

func (a *App) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve both collections over HTTP",
		Long: `Serve the REST API, a websocket change feed and Prometheus metrics.

Examples:
  questlog serve --addr :8080
  QUESTLOG_STORAGE_DRIVER=redis questlog serve`,
		Args: args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Options{
				Tasks:         a.taskStore(),
				Quests:        a.questStore(),
				TaskGen:       a.generator(model.KindTask),
				QuestGen:      a.generator(model.KindQuest),
				AllowedOrigin: a.cfg.Server.AllowedOrigin,
				Log:           a.log,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Starting questlog server at http://localhost%s\n", addr)
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
