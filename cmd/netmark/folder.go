package main

import (
	"github.com/spf13/cobra"

	"github.com/nikbrunner/netmark/internal/model"
)

func (c *cli) folderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Folder operations and selection",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List folders of the active organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := c.app.Store.Snapshot()
			selected := state.ActiveFolder.FolderID()
			for _, f := range state.GetFoldersInOrg(state.ActiveOrgID) {
				marker := " "
				if f.ID == selected {
					marker = "*"
				}
				count := 0
				for _, b := range state.GetBookmarksInFolder(state.ActiveOrgID, f.ID) {
					if !b.InTrash() {
						count++
					}
				}
				c.printf("%s %s  %-24s %d items\n", marker, f.ID, f.Name, count)
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a folder in the active organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.app.Store.AddFolder(cmd.Context(), model.NewFolderParams{Name: args[0]})
			if err != nil {
				return err
			}
			c.printf("Created folder %s (%s)\n", f.Name, f.ID)
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a folder; its bookmarks move to the root directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.resolveFolder(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Store.DeleteFolder(cmd.Context(), f.ID); err != nil {
				return err
			}
			c.printf("Deleted folder %s. Its bookmarks are now in the root directory.\n", f.Name)
			return nil
		},
	}

	useCmd := &cobra.Command{
		Use:   "use ID",
		Short: "Select a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.resolveFolder(args[0])
			if err != nil {
				return err
			}
			return c.selectAndShow(cmd.Context(), model.InFolder(f.ID))
		},
	}

	rootCmd := &cobra.Command{
		Use:   "root",
		Short: "Select the root directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.selectAndShow(cmd.Context(), model.Root())
		},
	}

	trashCmd := &cobra.Command{
		Use:   "trash",
		Short: "Select the trash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.selectAndShow(cmd.Context(), model.Trash())
		},
	}

	cmd.AddCommand(listCmd, addCmd, rmCmd, useCmd, rootCmd, trashCmd)
	return cmd
}
