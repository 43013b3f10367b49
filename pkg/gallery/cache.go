package gallery

import "sync"

// RatioCache stores resolved aspect ratios keyed by image. Images decode
// asynchronously, so the layout runs with an assumed square ratio until the
// real one lands; each resolution notifies the subscriber so the caller can
// recompute the layout with the updated cache.
type RatioCache struct {
	mu       sync.RWMutex
	ratios   map[string]float64
	onUpdate func(key string)
}

// NewRatioCache returns an empty cache. onUpdate may be nil; when set it is
// called after every new resolution.
func NewRatioCache(onUpdate func(key string)) *RatioCache {
	return &RatioCache{
		ratios:   make(map[string]float64),
		onUpdate: onUpdate,
	}
}

// Resolve records the natural ratio for an image. Later resolutions for the
// same key win; non-positive ratios are ignored.
func (c *RatioCache) Resolve(key string, ratio float64) {
	if ratio <= 0 {
		return
	}
	c.mu.Lock()
	c.ratios[key] = ratio
	c.mu.Unlock()

	if c.onUpdate != nil {
		c.onUpdate(key)
	}
}

// Ratio returns the resolved ratio for an image, or 1 while unresolved.
func (c *RatioCache) Ratio(key string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if r, ok := c.ratios[key]; ok {
		return r
	}
	return 1
}

// Images maps raw image keys through the cache into layout inputs,
// preserving order.
func (c *RatioCache) Images(keys []string) []Image {
	out := make([]Image, len(keys))
	for i, k := range keys {
		out[i] = Image{Key: k, Ratio: c.Ratio(k)}
	}
	return out
}
