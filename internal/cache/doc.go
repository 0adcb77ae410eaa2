// Package cache provides the generic soft-limited cache used for rendered
// shape tiles and decoded background images.
//
//	tiles := cache.New[TileKey, *image.RGBA](64)
//	tile := tiles.GetOrCreate(key, render)
//
// Entries carry an access tick; when the cache grows past its soft limit the
// least recently touched quarter is evicted. A limit of 0 disables eviction.
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
