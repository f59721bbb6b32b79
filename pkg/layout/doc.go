// Package layout computes the angular geometry of a radial menu.
//
// Rings are concentric bands. Ring 0 always spans the full circle with its
// first item centered at the top; each deeper ring is laid out against the
// wedge of the item selected in the ring below it.
//
// # Angles
//
// Angles are in degrees, 0 at the top of the screen and growing clockwise.
// A [SliceConfig] describes how a ring's items spread over its arc, either
// uniformly (ItemAngle) or with per-item angles (ItemAngles).
//
// # Child Ring Policy
//
// For a non-root ring of n items the engine tries, in order:
//
//  1. A fixed per-item angle from the owning node (ChildItemAngle), when
//     n items fit in 360 degrees; otherwise a full circle.
//  2. Stack: n × DefaultItemAngle within MaxArcAngle.
//  3. Distribute: MaxArcAngle / n, if that keeps items at or above the
//     phase minimum.
//  4. Stack at minimum: the phase minimum per item while the arc stays
//     below 360 minus that minimum.
//  5. Full circle, evenly distributed.
//
// The phase constants shrink with depth by DepthScale^(level-1) (or
// DepthScale^level, see [DepthFromLevel]) but never go below MinimalAngle.
// Rings never hold more than floor(360 / MinimalAngle) items.
//
// # Root Ring
//
// When ring 0 packs items tighter than RootComfortAngle, its hole radius
// grows by comfort/angle and its thickness by the square root of that
// factor. Nodes may fix their own root angle (AngleOverride); the remaining
// budget is split among the others, and overrides that cannot fit fall back
// to a uniform layout.
//
// # Caching
//
// [Memo] keeps the last computed configuration array and recomputes only
// when the stack's structural shape changes.
package layout
