// Package session assembles a running menu from configuration.
//
// A [Session] owns everything one menu instance needs: the enabled
// providers (optionally cached and watched), the update event bus, the
// owner [menu.Loop] that serializes all stack mutations, the live update
// [menu.Coordinator] and the pointer [menu.Controller]. Both the CLI and the
// HTTP debug API build their menus through [Open].
//
//	cfg, err := session.LoadConfig(session.DefaultConfigPath())
//	sess, err := session.Open(ctx, session.Options{Config: cfg, Logger: logger})
//	defer sess.Close()
//	go sess.Run(ctx)
//
//	err = sess.Do(ctx, func() { sess.Stack.ExpandCategory(0, 1, true) })
//
// # Configuration
//
// [Config] is read from TOML, by default at
// $XDG_CONFIG_HOME/piemenu/config.toml. Missing fields take defaults and
// unknown keys are rejected.
package session
