package ui

import "userdir/internal/directory"

// cardKey identifies one rendering of a card. Any change to the user, the
// card state or the layout produces a different key.
type cardKey struct {
	user     directory.User
	expanded bool
	selected bool
	width    int
	dark     bool
}

// RenderCache memoizes rendered cards so that moving the selection or
// typing in the search box only re-renders the cards that changed.
// It is not safe for concurrent use; the event loop owns it.
type RenderCache struct {
	entries map[cardKey]string
	maxSize int
	hits    int
	misses  int
}

// NewRenderCache creates a cache holding at most maxSize renders.
func NewRenderCache(maxSize int) *RenderCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &RenderCache{
		entries: make(map[cardKey]string, maxSize),
		maxSize: maxSize,
	}
}

// Card returns the rendered card, computing it on a miss.
func (rc *RenderCache) Card(c *Card, styles Styles, width int, selected bool) string {
	key := cardKey{
		user:     c.User,
		expanded: c.Expanded,
		selected: selected,
		width:    width,
		dark:     styles.Theme.IsDark,
	}
	if out, ok := rc.entries[key]; ok {
		rc.hits++
		return out
	}
	rc.misses++

	if len(rc.entries) >= rc.maxSize {
		rc.Clear()
	}
	out := c.View(styles, width, selected)
	rc.entries[key] = out
	return out
}

// Len returns the number of cached renders.
func (rc *RenderCache) Len() int { return len(rc.entries) }

// Stats returns hit and miss counts since creation.
func (rc *RenderCache) Stats() (hits, misses int) { return rc.hits, rc.misses }

// Clear empties the cache.
func (rc *RenderCache) Clear() {
	rc.entries = make(map[cardKey]string, rc.maxSize)
}
