package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/netmark/internal/importer"
	"github.com/nikbrunner/netmark/internal/model"
)

func parsePorts(specs []string) ([]model.Port, error) {
	ports := make([]model.Port, 0, len(specs))
	for _, spec := range specs {
		p, err := importer.ParsePort(spec)
		if err != nil {
			return nil, err
		}
		ports = append(ports, p)
	}
	return ports, nil
}

func (c *cli) addCmd() *cobra.Command {
	var (
		typ, name, value, folder string
		ports                    []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a bookmark to the active organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parsePorts(ports)
			if err != nil {
				return err
			}

			params := model.NewBookmarkParams{
				Type:  model.BookmarkType(typ),
				Name:  name,
				Value: value,
				Ports: parsed,
			}
			if folder != "" && folder != model.RootFolderID {
				f, err := c.resolveFolder(folder)
				if err != nil {
					return err
				}
				params.FolderID = f.ID
			} else {
				params.FolderID = folder
			}

			b, err := c.app.Store.AddBookmark(cmd.Context(), params)
			if err != nil {
				return err
			}
			c.printf("Added %s %s (%s)\n", b.Name, b.Value, b.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", string(model.TypeURL), "ip or url")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name (required)")
	cmd.Flags().StringVarP(&value, "value", "v", "", "IPv4 address or URL (required)")
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "folder id (default: selected folder, else root)")
	cmd.Flags().StringArrayVarP(&ports, "port", "p", nil, "annotated port as PROTO/NUM, repeatable")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var (
		typ, name, value, folder string
		ports                    []string
		noPorts                  bool
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a bookmark; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.resolveBookmark(args[0])
			if err != nil {
				return err
			}

			update := model.BookmarkUpdate{
				Type:  b.Type,
				Name:  b.Name,
				Value: b.Value,
				Ports: b.Ports,
			}
			flags := cmd.Flags()
			if flags.Changed("type") {
				update.Type = model.BookmarkType(typ)
			}
			if flags.Changed("name") {
				update.Name = name
			}
			if flags.Changed("value") {
				update.Value = value
			}
			if flags.Changed("folder") {
				update.FolderID = folder
				if folder != model.RootFolderID {
					f, err := c.resolveFolder(folder)
					if err != nil {
						return err
					}
					update.FolderID = f.ID
				}
			}
			if flags.Changed("port") {
				if update.Ports, err = parsePorts(ports); err != nil {
					return err
				}
			}
			if noPorts {
				update.Ports = []model.Port{}
			}

			updated, err := c.app.Store.UpdateBookmark(cmd.Context(), b.ID, update)
			if err != nil {
				return err
			}
			c.printf("Updated %s %s (%s)\n", updated.Name, updated.Value, updated.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "", "ip or url")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&value, "value", "v", "", "IPv4 address or URL")
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "folder id or root")
	cmd.Flags().StringArrayVarP(&ports, "port", "p", nil, "replace ports, PROTO/NUM, repeatable")
	cmd.Flags().BoolVar(&noPorts, "no-ports", false, "remove all ports")
	return cmd
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Move a bookmark to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.resolveBookmark(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Store.MoveToTrash(cmd.Context(), b.ID); err != nil {
				return err
			}
			c.printf("Moved %s to trash. It is deleted after %s unless restored.\n", b.Name, c.app.Store.Retention())
			return nil
		},
	}
}

func (c *cli) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore ID",
		Short: "Restore a trashed bookmark to the root directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.resolveBookmark(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Store.Restore(cmd.Context(), b.ID); err != nil {
				return err
			}
			c.printf("Restored %s to the root directory\n", b.Name)
			return nil
		},
	}
}

func (c *cli) purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge ID",
		Short: "Delete a bookmark permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.resolveBookmark(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Store.DeletePermanently(cmd.Context(), b.ID); err != nil {
				return err
			}
			c.printf("Deleted %s permanently\n", b.Name)
			return nil
		},
	}
}

func (c *cli) copyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy ID",
		Short: "Copy a bookmark's value to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.resolveBookmark(args[0])
			if err != nil {
				return err
			}
			if err := c.copy(b.Value); err != nil {
				return fmt.Errorf("clipboard: %w", err)
			}
			c.printf("Copied %s\n", b.Value)
			return nil
		},
	}
}
