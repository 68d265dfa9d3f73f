package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/netmark/internal/exporter"
	"github.com/nikbrunner/netmark/internal/importer"
	"github.com/nikbrunner/netmark/internal/picker"
	"github.com/nikbrunner/netmark/internal/probe"
	"github.com/nikbrunner/netmark/internal/search"
	"github.com/nikbrunner/netmark/internal/version"
)

func (c *cli) sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Purge trashed bookmarks past the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.app.Store.CleanupTrash(cmd.Context())
			if err != nil {
				return err
			}
			c.printf("Purged %d expired bookmarks\n", n)
			return nil
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a Netscape bookmark HTML file into the active organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			items, err := importer.ParseHTML(file)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			added, skipped, err := c.app.Store.Import(cmd.Context(), items)
			if err != nil {
				return err
			}

			c.printf("Imported %d bookmarks", added)
			if skipped > 0 {
				c.printf(" (%d duplicates skipped)", skipped)
			}
			c.printf("\n")
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [PATH]",
		Short: "Export the active organization as Netscape bookmark HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, ok := c.app.Store.ActiveOrganization()
			if !ok {
				return fmt.Errorf("no active organization")
			}

			var outputPath string
			if len(args) == 1 {
				outputPath = args[0]
			} else {
				var err error
				outputPath, err = exporter.DefaultExportPath(org.Name, c.app.Store.Now())
				if err != nil {
					return err
				}
			}

			state := c.app.Store.Snapshot()
			html := exporter.ExportHTML(state, org.ID)

			if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, []byte(html), 0o644); err != nil {
				return err
			}

			c.printf("Exported %s to %s\n", org.Name, outputPath)
			return nil
		},
	}
}

func (c *cli) findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find QUERY...",
		Short: "Fuzzy find a bookmark by name or value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			state := c.app.Store.Snapshot()
			results := search.FuzzySearchBookmarks(state, state.ActiveOrgID, query)

			if len(results) == 0 {
				c.printf("No bookmarks found for '%s'\n", query)
				return nil
			}

			if len(results) == 1 || !c.interactive() {
				for _, r := range results {
					c.printf("%s  %-24s %s\n", r.Bookmark.ID, r.Bookmark.Name, r.Bookmark.Value)
				}
				return nil
			}

			final, err := tea.NewProgram(picker.New(results, query, c.styles), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("picker: %w", err)
			}

			p := final.(picker.Picker)
			b, ok := p.SelectedBookmark()
			if !ok {
				return nil
			}
			if p.Action() == picker.ActionCopy {
				if err := c.copy(b.Value); err != nil {
					return fmt.Errorf("clipboard: %w", err)
				}
				c.printf("Copied %s\n", b.Value)
				return nil
			}
			c.printf("%s\n", b.Value)
			return nil
		},
	}
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe reachability of the visible bookmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := c.app.Store.VisibleBookmarks("")
			if res.Empty() {
				c.printf("Nothing to check\n")
				return nil
			}

			cfg := c.app.Config.Probe
			results := probe.Check(cmd.Context(), res.Bookmarks, probe.Options{
				Timeout:     cfg.Timeout,
				Concurrency: cfg.Concurrency,
			}, nil)

			for _, r := range results {
				c.printf("%-24s %-32s %s\n", r.Bookmark.Name, r.Bookmark.Value, probe.Describe(r))
			}

			summary := probe.Summary(results)
			c.printf("\n%d healthy, %d dead, %d unreachable, %d unknown\n",
				summary[probe.Healthy], summary[probe.Dead], summary[probe.Unreachable], summary[probe.Unknown])
			return nil
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all data and restore the default organizations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("reset deletes every organization, folder and bookmark; pass --force to confirm")
			}
			if err := c.app.Store.Reset(cmd.Context()); err != nil {
				return err
			}
			c.printf("Restored default data\n")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm the reset")
	return cmd
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the trash sweeper (and metrics endpoint, if configured) until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context())
		},
	}
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipApp: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			c.printf("%s\n", version.String())
		},
	}
}
