// Package hittest maps pointer positions onto the rings produced by
// [layout.Engine].
//
// Positions are screen coordinates with y growing downward. [Polar]
// converts a position to the layout's angle convention (0 degrees at the
// top, clockwise) and a distance from the menu center; [ItemAt] resolves
// the ring band and the item under the pointer.
//
// A pointer outside every ring is attributed to the active ring, which
// keeps hover tracking continuous when the pointer overshoots the menu.
// A pointer inside the center hole hits nothing.
package hittest
