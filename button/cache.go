// button/cache.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package button

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tpanel/tpanel/bitmap"
)

// DefaultCacheSize is the number of bitmaps a BitmapCache keeps.
const DefaultCacheSize = 512

type CacheKey struct {
	Handle   uint32
	Parent   uint32
	Instance int
}

type CacheEntry struct {
	Bitmap *bitmap.Bitmap
	// Ready is set once the bitmap is fully composed; Show records
	// whether it is currently displayed.
	Ready bool
	Show  bool
}

// BitmapCache holds composed instance bitmaps so that a button that is
// hidden and shown again does not have to be recomposed. A nil
// *BitmapCache caches nothing.
type BitmapCache struct {
	mu    sync.Mutex
	cache *lru.Cache[CacheKey, CacheEntry]
}

func NewBitmapCache(size int) *BitmapCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[CacheKey, CacheEntry](size)
	if err != nil {
		// Only fails for a non-positive size.
		panic(err)
	}
	return &BitmapCache{cache: c}
}

func (c *BitmapCache) Get(k CacheKey) (CacheEntry, bool) {
	if c == nil {
		return CacheEntry{}, false
	}
	return c.cache.Get(k)
}

func (c *BitmapCache) Put(k CacheKey, bm *bitmap.Bitmap, show bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(k, CacheEntry{Bitmap: bm, Ready: bm.IsValid(), Show: show})
}

func (c *BitmapCache) SetShow(k CacheKey, show bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.cache.Peek(k); ok {
		e.Show = show
		c.cache.Add(k, e)
	}
}

// Invalidate drops the bitmap of a single instance.
func (c *BitmapCache) Invalidate(k CacheKey) {
	if c == nil {
		return
	}
	c.cache.Remove(k)
}

// InvalidateButton drops the bitmaps of all instances of a button.
func (c *BitmapCache) InvalidateButton(handle, parent uint32) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.cache.Keys() {
		if k.Handle == handle && k.Parent == parent {
			c.cache.Remove(k)
		}
	}
}

// Shown returns the keys of all bitmaps that are currently displayed.
func (c *BitmapCache) Shown() []CacheKey {
	if c == nil {
		return nil
	}
	var keys []CacheKey
	for _, k := range c.cache.Keys() {
		if e, ok := c.cache.Peek(k); ok && e.Show {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *BitmapCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
