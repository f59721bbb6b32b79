package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/piemenu/pkg/provider"
	"github.com/matzehuels/piemenu/pkg/provider/favorites"
	"github.com/matzehuels/piemenu/pkg/provider/folder"
	"github.com/matzehuels/piemenu/pkg/session"
)

// favoritesCommand creates the favorites management command.
func (c *CLI) favoritesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage pinned files and folders",
		Long: `Manage pinned files and folders.

Favorites are kept in the store configured under [favorites] (a TOML file by
default, or MongoDB). Changes are announced on the event bus, so a running
menu sharing a Redis bus refreshes its favorites ring.`,
	}

	cmd.AddCommand(c.favoritesListCommand())
	cmd.AddCommand(c.favoritesAddCommand())
	cmd.AddCommand(c.favoritesRemoveCommand())

	return cmd
}

func (c *CLI) favoritesListCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List favorites in ring order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openFavorites(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			favs := sess.Favorites.Favorites()
			if format != "" {
				return encode(os.Stdout, format, favs)
			}
			if len(favs) == 0 {
				printInfo("No favorites yet")
				printNextStep("Add one", appName+" favorites add ~/Documents")
				return nil
			}
			fmt.Println(favoritesTable(favs))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml (default: table)")
	return cmd
}

func (c *CLI) favoritesAddCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Pin a file or folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(folder.ExpandHome(args[0]))
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			sess, err := c.openFavorites(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.Favorites.Add(ctx, favorites.Favorite{Path: path, Name: name, Dir: info.IsDir()}); err != nil {
				return err
			}
			c.announceFavorites(ctx, sess)
			printSuccess("Pinned %s", StyleHighlight.Render(path))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (default: base name)")
	return cmd
}

func (c *CLI) favoritesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <path>",
		Aliases: []string{"rm"},
		Short:   "Unpin a file or folder",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(folder.ExpandHome(args[0]))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			sess, err := c.openFavorites(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.Favorites.Remove(ctx, path); err != nil {
				return err
			}
			c.announceFavorites(ctx, sess)
			printSuccess("Unpinned %s", StyleHighlight.Render(path))
			return nil
		},
	}
}

// openFavorites opens a session serving only the favorites provider.
func (c *CLI) openFavorites(ctx context.Context) (*session.Session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Providers = []string{favorites.ID}
	return session.Open(ctx, session.Options{Config: cfg, DryRun: c.dryRun, Logger: c.Logger})
}

// announceFavorites tells running menus that the favorites changed.
func (c *CLI) announceFavorites(ctx context.Context, sess *session.Session) {
	ev := provider.NewUpdateEvent(favorites.ID, favorites.ContentID)
	if err := sess.Publish(ctx, ev); err != nil {
		c.Logger.Warn("announce favorites change", "err", err)
	}
}

func favoritesTable(favs []favorites.Favorite) string {
	rows := make([][]string, len(favs))
	for i, f := range favs {
		kind := "file"
		if f.Dir {
			kind = "folder"
		}
		name := f.Name
		if name == "" {
			name = filepath.Base(f.Path)
		}
		rows[i] = []string{strconv.Itoa(f.Position), name, kind, f.Path}
	}

	return newTable([]string{"#", "Name", "Kind", "Path"}, rows, func(row, col int) lipgloss.Style {
		switch col {
		case 1:
			return StyleHighlight
		case 3:
			return StyleDim
		}
		return StyleValue
	}).Render()
}
