package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/nikbrunner/netmark/internal/app"
	"github.com/nikbrunner/netmark/internal/config"
	"github.com/nikbrunner/netmark/internal/model"
	"github.com/nikbrunner/netmark/internal/tui"
)

// skipApp marks commands that run without opening the store.
const skipApp = "netmark/skip-app"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(os.Stdout)
	if err := c.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the state shared by all subcommands.
type cli struct {
	cfgFile  string
	logLevel string

	out         io.Writer
	styles      tui.Styles
	params      app.Params // overrides for tests
	copy        func(string) error
	interactive func() bool

	app *app.App
}

func newCLI(out io.Writer) *cli {
	return &cli{
		out:    out,
		styles: tui.DefaultStyles(),
		copy:   clipboard.WriteAll,
		interactive: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
		},
	}
}

// run executes one command line and releases the app afterwards.
func (c *cli) run(ctx context.Context, args []string) error {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(c.out)
	err := root.ExecuteContext(ctx)

	if c.app != nil {
		err = multierr.Append(err, c.app.Close())
		c.app = nil
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "netmark",
		Short:         "Bookmarks for IP hosts and web services, grouped by organization",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipApp] == "true" {
				return nil
			}
			return c.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: netmark.yaml in ~/.config/netmark)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		c.lsCmd(),
		c.dashboardCmd(),
		c.orgCmd(),
		c.folderCmd(),
		c.addCmd(),
		c.editCmd(),
		c.rmCmd(),
		c.restoreCmd(),
		c.purgeCmd(),
		c.sweepCmd(),
		c.trashCmd(),
		c.importCmd(),
		c.exportCmd(),
		c.findCmd(),
		c.copyCmd(),
		c.checkCmd(),
		c.resetCmd(),
		c.watchCmd(),
		c.versionCmd(),
	)
	return root
}

func (c *cli) open(ctx context.Context) error {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}

	a, err := app.New(ctx, cfg, c.params)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *cli) renderer() tui.Renderer {
	return tui.NewRenderer(c.styles, c.app.Store.Retention())
}

// show renders the current selection.
func (c *cli) show() {
	st := c.app.Store
	fmt.Fprint(c.out, c.renderer().RenderResult(st.Snapshot(), st.VisibleBookmarks(""), st.Now()))
}

// resolveBookmark finds a bookmark of the active organization by id or
// unique id prefix.
func (c *cli) resolveBookmark(ref string) (model.Bookmark, error) {
	state := c.app.Store.Snapshot()
	var ids []string
	for _, b := range state.GetBookmarksInOrg(state.ActiveOrgID) {
		ids = append(ids, b.ID)
	}
	id, err := resolve("bookmark", ref, ids)
	if err != nil {
		return model.Bookmark{}, err
	}
	b, _ := c.app.Store.Bookmark(id)
	return b, nil
}

// resolveFolder finds a folder of the active organization by id or unique
// id prefix.
func (c *cli) resolveFolder(ref string) (model.Folder, error) {
	state := c.app.Store.Snapshot()
	var ids []string
	for _, f := range state.GetFoldersInOrg(state.ActiveOrgID) {
		ids = append(ids, f.ID)
	}
	id, err := resolve("folder", ref, ids)
	if err != nil {
		return model.Folder{}, err
	}
	return *state.GetFolderByID(id), nil
}

func resolve(kind, ref string, ids []string) (string, error) {
	var matches []string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if ref != "" && strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", &model.NotFoundError{Kind: kind, ID: ref}
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, ref, len(matches))
	}
}
