// Package favorites provides a ring of user-pinned files and folders.
//
// Favorites are persisted through a [Store]. Two implementations ship:
// [TOMLStore] keeps them in a local TOML file and [MongoStore] in a MongoDB
// collection so several machines can share one list. Favorite folders are
// dynamic nodes whose contents are listed by the folder provider.
package favorites
