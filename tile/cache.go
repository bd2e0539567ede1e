// tile/cache.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tile

import "github.com/atlasfg/atlas/util"

// cacheEntry is the persisted state for one tile: just enough to avoid
// re-probing every map file's PNG header on the next startup.
type cacheEntry struct {
	HiresSize  int
	LowresSize int
}

type cacheFile struct {
	Tiles map[string]cacheEntry
}

const cachePath = "tilesizes.cache"

// SaveSizeCache persists every known tile's probed map sizes, so the
// next startup can skip re-reading PNG headers for tiles nothing has
// touched.
func SaveSizeCache(tiles []*Tile) error {
	cf := cacheFile{Tiles: make(map[string]cacheEntry, len(tiles))}
	for _, t := range tiles {
		if t.HasHiresMap() || t.HasLowresMap() {
			cf.Tiles[t.Name()] = cacheEntry{HiresSize: t.hiresSize, LowresSize: t.lowresSize}
		}
	}
	return util.CacheStoreObject(cachePath, cf)
}

// LoadSizeCache reads back a previously-saved size cache. A missing or
// corrupt cache returns a nil map and the read error; a nil map passed
// to NewWithSizeCache makes it probe PNG headers directly.
func LoadSizeCache() (map[string]cacheEntry, error) {
	var cf cacheFile
	if _, err := util.CacheRetrieveObject(cachePath, &cf); err != nil {
		return nil, err
	}
	return cf.Tiles, nil
}

// applyCachedSizes fills in a freshly-created Tile's map sizes from a
// previously-loaded cache, skipping the PNG header probe entirely.
func (t *Tile) applyCachedSizes(cache map[string]cacheEntry) bool {
	e, ok := cache[t.name]
	if !ok {
		return false
	}
	t.hiresSize, t.lowresSize = e.HiresSize, e.LowresSize
	return true
}
