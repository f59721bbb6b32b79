package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/piemenu/internal/server"
	"github.com/matzehuels/piemenu/pkg/observability"
)

// shutdownTimeout bounds how long serve waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command exposing the menu over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the menu over a local HTTP API",
		Long: `Serve the menu over a local HTTP API.

The API drives one menu session. All requests are applied in order on the
session's loop, alongside provider updates.

Routes:
  GET  /rings                        ring stack with geometry
  GET  /hit?x=&y=                    item under a screen point
  GET  /providers                    registered providers
  GET  /stats                        transition, load, update and cache counts
  POST /rings/{level}/expand/{index} open a category
  POST /rings/{level}/navigate/{index}  enter a folder (202 while loading)
  POST /rings/{level}/hover/{index}  hover an item
  POST /rings/{level}/collapse       close rings above level
  POST /click, /move                 pointer events {"x","y","button","mods"}
  POST /load                         reload every provider
  POST /dismiss                      close the menu
  POST /events                       publish {"provider_id","content_id"}`,
		Example: `  piemenu serve
  piemenu serve --addr 127.0.0.1:9000 --dry-run
  curl -X POST localhost:7411/rings/0/expand/1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	sess, stop, err := c.startSession(ctx)
	if err != nil {
		return err
	}
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	stats := observability.NewCounters()
	stats.Install()
	defer observability.Reset()

	srv := &http.Server{
		Handler:           server.New(ctx, sess, c.Logger).WithStats(stats).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSuccess("Serving menu %s", StyleDim.Render(sess.ID))
	printKeyValue("Address", StyleLink.Render("http://"+ln.Addr().String()))
	printKeyValue("Providers", StyleValue.Render(strings.Join(sess.Providers.IDs(), ", ")))
	printNextStep("Inspect the rings", "curl http://"+ln.Addr().String()+"/rings")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
