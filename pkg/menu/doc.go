// Package menu holds the navigation state of a radial menu and the
// machinery that drives it.
//
// A [Stack] is the ordered list of displayed rings: ring 0 holds every
// provider's root nodes, each deeper ring the children of the item
// selected in the ring below. All transitions are synchronous except two
// that wait on a provider: [Stack.NavigateIntoFolder] and the dynamic
// reload performed by the [Coordinator] on a live update. Both hand their
// continuation to a [Scheduler], the single owner context that serializes
// every mutation; on resume they compare the stack's generation against
// the one captured before suspending and drop the result when the stack
// has moved on.
//
// Invalid levels, indices and empty branches never surface as errors.
// They are traced at debug level and the stack is left untouched.
//
// [Loop] is a goroutine-backed Scheduler; front ends with their own event
// loop (such as a bubbletea program) implement Scheduler directly.
// [Controller] turns pointer movement and clicks into transitions.
package menu
