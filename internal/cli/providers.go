package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/provider"
)

// providerInfo summarizes one provider for the providers command.
type providerInfo struct {
	ID    string   `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Icon  string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	Roots []string `json:"roots" yaml:"roots"`
	Nodes int      `json:"nodes" yaml:"nodes"`
}

// providersCommand creates the providers command listing the enabled
// providers and their root items.
func (c *CLI) providersCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List the enabled providers",
		Long: `List the enabled providers in root ring order with their root items.

The node count covers every node a provider returns up front. Folder
contents load on demand and are not counted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProviders(cmd.Context(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml (default: table)")

	return cmd
}

func (c *CLI) runProviders(ctx context.Context, format string) error {
	sess, err := c.openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	infos := describeProviders(ctx, sess.Providers.All())
	if format != "" {
		return encode(os.Stdout, format, infos)
	}

	rows := make([][]string, len(infos))
	for i, p := range infos {
		rows[i] = []string{p.ID, p.Name, strconv.Itoa(p.Nodes), strings.Join(p.Roots, ", ")}
	}
	t := newTable([]string{"ID", "Name", "Nodes", "Roots"}, rows, func(row, col int) lipgloss.Style {
		switch col {
		case 0:
			return StyleHighlight
		case 2:
			return StyleNumber
		}
		return StyleValue
	})
	fmt.Println(t.Render())
	return nil
}

func describeProviders(ctx context.Context, ps []provider.Provider) []providerInfo {
	infos := make([]providerInfo, len(ps))
	for i, p := range ps {
		roots := p.ProvideFunctions(ctx)
		info := providerInfo{ID: p.ID(), Name: p.Name(), Icon: p.Icon(), Roots: []string{}}
		for _, r := range roots {
			info.Roots = append(info.Roots, r.Name)
		}
		info.Nodes = countNodes(roots)
		infos[i] = info
	}
	return infos
}

func countNodes(nodes []node.Node) int {
	n := len(nodes)
	for _, c := range nodes {
		n += countNodes(c.Children)
	}
	return n
}
