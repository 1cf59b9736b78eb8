package render

import "math"

// Cell is what one rounded-degree location looks like at a frame time.
type Cell struct {
	Brightness float64 // 1 minus the fraction of the Sun covered
	SunVisible bool    // Sun at or above the geometric horizon
}

// Darkened reports whether pixels in the cell should be shaded.
func (c Cell) Darkened() bool {
	return c.SunVisible && c.Brightness < 1
}

type cellKey struct {
	lat, lon int
}

// RoundDegrees rounds a coordinate to the whole degree used as a memo key.
// Halves go to the even neighbour so adjacent pixel centres that straddle a
// boundary split evenly.
func RoundDegrees(deg float64) int {
	return int(math.RoundToEven(deg))
}

// FrameCache memoises cells for a single frame time. Body positions change
// between frames, so a cache must never be reused for another time without
// Reset. It is not safe for concurrent use; each worker owns its own.
type FrameCache struct {
	t       float64
	entries map[cellKey]Cell
	hits    int64
	misses  int64
}

// NewFrameCache returns an empty cache for frame time t.
func NewFrameCache(t float64) *FrameCache {
	return &FrameCache{
		t:       t,
		entries: make(map[cellKey]Cell),
	}
}

// Time returns the frame time the cache belongs to.
func (c *FrameCache) Time() float64 { return c.t }

// GetOrCompute returns the cell for (latDeg, lonDeg), calling compute on a
// miss. Failed computations are not stored.
func (c *FrameCache) GetOrCompute(latDeg, lonDeg int, compute func() (Cell, error)) (Cell, error) {
	key := cellKey{latDeg, lonDeg}
	if cell, ok := c.entries[key]; ok {
		c.hits++
		return cell, nil
	}
	c.misses++
	cell, err := compute()
	if err != nil {
		return Cell{}, err
	}
	c.entries[key] = cell
	return cell, nil
}

// Len returns the number of memoised cells.
func (c *FrameCache) Len() int { return len(c.entries) }

// Stats returns the hit and miss counts since the last reset.
func (c *FrameCache) Stats() (hits, misses int64) {
	return c.hits, c.misses
}

// Reset empties the cache and rebinds it to frame time t.
func (c *FrameCache) Reset(t float64) {
	clear(c.entries)
	c.t = t
	c.hits, c.misses = 0, 0
}
