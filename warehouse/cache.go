/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package warehouse

import (
	"context"
	"sync"
	"time"
)

// Cache memoises successful per-institution warehouse results for a fixed
// lifetime. It is owned by the caller and invalidated explicitly; failed
// queries are never cached.
type Cache struct {
	lifetime time.Duration

	mu            sync.RWMutex
	byInstitution map[string]cacheEntry
}

type cacheEntry struct {
	status InstitutionStatus
	stored time.Time
}

// NewCache returns a Cache whose entries expire after the given lifetime.
func NewCache(lifetime time.Duration) *Cache {
	return &Cache{
		lifetime:      lifetime,
		byInstitution: make(map[string]cacheEntry),
	}
}

// Get returns the cached status for the given institution key, and whether a
// live entry was found.
func (c *Cache) Get(instKey string) (InstitutionStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.byInstitution[instKey]
	if !ok || entry.stored.Add(c.lifetime).Before(time.Now()) {
		return InstitutionStatus{}, false
	}

	return entry.status, true
}

// Store records the given status against the given institution key. Statuses
// holding a captured error are ignored.
func (c *Cache) Store(instKey string, status InstitutionStatus) {
	if status.Err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.byInstitution[instKey] = cacheEntry{status: status, stored: time.Now()}
}

// Invalidate removes the entry for the given institution key.
func (c *Cache) Invalidate(instKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.byInstitution, instKey)
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byInstitution = make(map[string]cacheEntry)
}

// ForInstitutions is like the package-level ForInstitutions, but answers from
// the cache where possible and stores fresh successful results.
func (c *Cache) ForInstitutions(ctx context.Context, src Source, idsByInstitution map[string][]string) StatusByInstitution {
	result := make(StatusByInstitution, len(idsByInstitution))
	misses := make(map[string][]string)

	for instKey, ids := range idsByInstitution {
		if status, ok := c.Get(instKey); ok {
			result[instKey] = status
		} else {
			misses[instKey] = ids
		}
	}

	for instKey, status := range ForInstitutions(ctx, src, misses) {
		c.Store(instKey, status)

		result[instKey] = status
	}

	return result
}
