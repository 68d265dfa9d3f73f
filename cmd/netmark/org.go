package main

import (
	"github.com/spf13/cobra"

	"github.com/nikbrunner/netmark/internal/model"
)

func (c *cli) orgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Organization operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := c.app.Store.Snapshot()
			for _, org := range state.Organizations {
				marker := " "
				if org.ID == state.ActiveOrgID {
					marker = "*"
				}
				c.printf("%s %s  %-24s %-8s %d bookmarks\n",
					marker, org.ID, org.Name, org.Color, c.app.Store.BookmarkCount(org.ID))
			}
			return nil
		},
	}

	var color string
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := c.app.Store.AddOrganization(cmd.Context(), model.NewOrganizationParams{
				Name:  args[0],
				Color: color,
			})
			if err != nil {
				return err
			}
			c.printf("Created organization %s (%s)\n", org.Name, org.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&color, "color", model.DefaultOrgColor, "display color")

	useCmd := &cobra.Command{
		Use:   "use ID",
		Short: "Switch the active organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := c.app.Store.Snapshot()
			ids := make([]string, 0, len(state.Organizations))
			for _, org := range state.Organizations {
				ids = append(ids, org.ID)
			}
			id, err := resolve("organization", args[0], ids)
			if err != nil {
				return err
			}
			if err := c.app.Store.SetActiveOrg(cmd.Context(), id); err != nil {
				return err
			}
			c.show()
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, useCmd)
	return cmd
}
