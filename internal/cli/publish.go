package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/piemenu/pkg/events"
	"github.com/matzehuels/piemenu/pkg/provider"
	"github.com/matzehuels/piemenu/pkg/session"
)

// publishCommand creates the publish command sending an update event to
// running menus.
func (c *CLI) publishCommand() *cobra.Command {
	var meta []string

	cmd := &cobra.Command{
		Use:   "publish <provider> [content-id]",
		Short: "Tell running menus that a provider's content changed",
		Long: `Tell running menus that a provider's content changed.

The event goes out on the Redis bus configured under [events]. Every menu
subscribed to it refreshes the shallowest open ring showing the provider's
content, or the provider's items in the root ring. Without a content ID any
ring of the provider matches.`,
		Example: `  piemenu publish favorites
  piemenu publish files /home/me/Downloads --meta op=create`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := provider.NewUpdateEvent(args[0], "")
			if len(args) == 2 {
				ev.ContentID = args[1]
			}
			md, err := parseMeta(meta)
			if err != nil {
				return err
			}
			ev.Metadata = md
			return c.runPublish(cmd.Context(), ev)
		},
	}

	cmd.Flags().StringArrayVar(&meta, "meta", nil, "event metadata as key=value (repeatable)")

	return cmd
}

func parseMeta(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	md := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata %q (want key=value)", p)
		}
		md[k] = v
	}
	return md, nil
}

func (c *CLI) runPublish(ctx context.Context, ev provider.UpdateEvent) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Events.Backend != session.BackendRedis {
		return fmt.Errorf("publishing to other processes needs events.backend = %q, config has %q", session.BackendRedis, cfg.Events.Backend)
	}

	bus, err := events.NewRedisBus(ctx, cfg.Events.Redis, c.Logger)
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := bus.Publish(ctx, ev); err != nil {
		return err
	}
	printSuccess("Published %s", StyleDim.Render(ev.ID))
	printKeyValue("Provider", ev.ProviderID)
	if ev.ContentID != "" {
		printKeyValue("Content", ev.ContentID)
	}
	printKeyValue("Channel", bus.Channel())
	return nil
}
