// Package provider defines the protocol between the menu engine and its
// content sources.
//
// A [Provider] contributes root nodes to ring 0 and, for nodes marked
// NeedsDynamicLoading, produces their children on demand. Providers are
// stateless from the engine's point of view: every call returns a fresh
// node tree, and the engine never assumes node identity survives between
// calls. Rings are matched across calls by (provider ID, content ID) only.
//
// When backing data changes, a provider (or anything watching on its
// behalf) broadcasts an [UpdateEvent]; the menu's update coordinator
// decides which ring, if any, to refresh.
package provider
