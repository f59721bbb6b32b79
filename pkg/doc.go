// Package pkg provides the core libraries of piemenu, a radial menu engine.
//
// # Overview
//
// A pie menu is a stack of concentric rings. Ring 0 shows the root items of
// every enabled provider; opening a category or folder adds a ring whose
// items fan out around the parent's angle. The pkg directory is organized
// into four areas:
//
//  1. Model: [node] (menu items and behaviors) and [provider] (sources of items)
//  2. Geometry: [layout] (ring angles and radii) and [hittest] (point to item)
//  3. Navigation: [menu] (ring stack, live updates, pointer controller)
//  4. Infrastructure: [cache], [events], [errors], [observability] and [session]
//
// # Architecture
//
// The typical flow through a menu instance:
//
//	providers (system, apps, folder, favorites)
//	         ↓
//	    [menu.Stack] (ring 0, expand, navigate, collapse)
//	         ↓
//	    [layout.Engine] (RingConfig per ring)
//	         ↓
//	    [hittest] + [menu.Controller] (pointer → transition or action)
//
// Update events published on an [events.Bus] reach the [menu.Coordinator],
// which reloads the affected ring in place.
//
// # Quick Start
//
// Open a session from the default configuration, expand the first root item
// and click whatever sits under a point:
//
//	sess, err := session.Open(ctx, session.Options{Config: session.DefaultConfig()})
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//	go sess.Run(ctx)
//
//	sess.Do(ctx, func() {
//	    sess.Stack.ExpandCategory(0, 0, true)
//	    out, err := sess.Controller.Click(ctx, node.LeftClick, hittest.Point{X: 120, Y: 40}, 0)
//	    ...
//	})
//
// Every stack transition runs on the session's owner loop. Front ends with
// an event loop of their own pass it as [session.Options].Scheduler.
//
// # Main Packages
//
// [node] - Menu nodes, click behaviors per channel and modifier, and the
// action registry that maps action IDs to handlers.
//
// [provider] - The Provider interface, the registry that fixes ring 0 order,
// update events and a caching decorator. Subpackages:
//
//   - [provider/system]: running processes grouped by executable
//   - [provider/apps]: desktop entries grouped by category
//   - [provider/folder]: directory browsing with lazy children and fsnotify updates
//   - [provider/favorites]: pinned paths backed by a TOML file or MongoDB
//
// [layout] - Computes each ring's start angle, item angle and radii from
// its parent. Results are memoized per configuration.
//
// [hittest] - Polar geometry: which ring and item a screen point falls in.
//
// [menu] - The ring stack, the live update coordinator and the pointer
// controller.
//
// [render] - Graphviz export of provider trees and ring stacks (SVG, PNG, PDF).
//
// ## Infrastructure
//
// [cache] - Provider result caching: file, Redis or none.
//
// [events] - Update bus with in-process and Redis pub/sub implementations.
//
// [errors] - Coded errors with user-facing messages.
//
// [session] - TOML configuration and assembly of a complete menu instance.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/menu/...               # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [node]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/node
// [provider]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/provider
// [provider/system]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/provider/system
// [provider/apps]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/provider/apps
// [provider/folder]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/provider/folder
// [provider/favorites]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/provider/favorites
// [layout]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/layout
// [hittest]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/hittest
// [menu]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/menu
// [menu.Stack]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/menu#Stack
// [menu.Controller]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/menu#Controller
// [menu.Coordinator]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/menu#Coordinator
// [layout.Engine]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/layout#Engine
// [events.Bus]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/events#Bus
// [render]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/cache
// [events]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/events
// [errors]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/observability
// [session]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/session
// [session.Options]: https://pkg.go.dev/github.com/matzehuels/piemenu/pkg/session#Options
package pkg
