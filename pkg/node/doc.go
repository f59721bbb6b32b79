// Package node defines the content items shown in a radial menu.
//
// A [Node] is a value snapshot produced by a provider. Trees are rebuilt on
// every provider call, children are owned by their parent and nodes never
// point back at their parents, so the engine can copy and compare them
// freely.
//
// # Interactions
//
// Each node binds four channels (left, right and middle click, plus the
// pointer crossing the ring's outer boundary). A channel holds a base
// [Behavior] and a list of modifier overrides:
//
//	n.Bindings.LeftClick = node.On(node.Run("open")).
//	    With(node.ModShift, node.RunKeepOpen("open"))
//
//	b := n.Resolve(node.LeftClick, node.ModShift) // ExecuteKeepOpen "open"
//
// An override applies only when the pressed modifiers match its set
// exactly; otherwise the base behavior applies.
//
// Behaviors reference actions by [ActionRef]. The handle is resolved through
// an [ActionRegistry] at execution time.
package node
