package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/netmark/internal/model"
	"github.com/nikbrunner/netmark/internal/scheduler"
	"github.com/nikbrunner/netmark/internal/tui"
)

func (c *cli) lsCmd() *cobra.Command {
	var term string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "Show the current selection, or search the active organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := c.app.Store
			fmt.Fprint(c.out, c.renderer().RenderResult(st.Snapshot(), st.VisibleBookmarks(term), st.Now()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&term, "search", "s", "", "filter by name (any case) or value")
	return cmd
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Select and show the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.selectAndShow(cmd.Context(), model.Dashboard())
		},
	}
}

func (c *cli) selectAndShow(ctx context.Context, sel model.Selection) error {
	if err := c.app.Store.SetActiveFolder(ctx, sel); err != nil {
		return err
	}
	c.show()
	return nil
}

func (c *cli) trashCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Select and show the trash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.app.Store.SetActiveFolder(ctx, model.Trash()); err != nil {
				return err
			}
			if !watch {
				c.show()
				return nil
			}
			return c.watchTrash(ctx)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "live countdown; r restores, x deletes forever")
	return cmd
}

// watchTrash runs the countdown view with the sweeper purging in the
// background.
func (c *cli) watchTrash(ctx context.Context) error {
	sched := scheduler.NewCronScheduler()
	sweeper := c.app.NewSweeper(sched)
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		sweeper.Stop()
		sched.Stop()
	}()

	m := tui.NewTrashModel(ctx, c.app.Store, c.styles)
	defer m.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
