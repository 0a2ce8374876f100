package cache

import (
	"sync"

	"github.com/bytedance/sonic"

	"transportadoras-server-go/internal/domain/carrier"
)

// Cache holds the client's working copy of the record collection. Mutations
// are applied locally first and reconciled against server responses, so the
// cache must hand out defensive copies only.
type Cache struct {
	mu      sync.RWMutex
	records []carrier.Carrier
	version uint64
}

func New() *Cache {
	return &Cache{records: []carrier.Carrier{}}
}

// All returns a deep copy of the collection in its current order.
func (c *Cache) All() []carrier.Carrier {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]carrier.Carrier, len(c.records))
	for i, rec := range c.records {
		out[i] = rec.Clone()
	}
	return out
}

// Find returns the record with the given id, if present.
func (c *Cache) Find(id string) (carrier.Carrier, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, rec := range c.records {
		if rec.ID == id {
			return rec.Clone(), true
		}
	}
	return carrier.Carrier{}, false
}

// Len reports the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Version is a structural counter: it changes only when the id sequence of
// the collection changes. Field-level edits that keep the same ids in the
// same order do not bump it.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// ReplaceAll swaps in a fresh server snapshot. The structural version is
// bumped only when the id sequence differs from what was cached.
func (c *Cache) ReplaceAll(records []carrier.Carrier) {
	copied := make([]carrier.Carrier, len(records))
	for i, rec := range records {
		copied[i] = rec.Clone()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !sameIDSequence(c.records, copied) {
		c.version++
	}
	c.records = copied
}

// Upsert inserts or replaces a single record in place.
func (c *Cache) Upsert(record carrier.Carrier) {
	rec := record.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.records {
		if c.records[i].ID == rec.ID {
			c.records[i] = rec
			return
		}
	}
	c.records = append(c.records, rec)
	c.version++
}

// ReplaceID swaps a record's id, keeping its position. Used when a local
// placeholder is confirmed with the server-assigned record.
func (c *Cache) ReplaceID(oldID string, record carrier.Carrier) bool {
	rec := record.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.records {
		if c.records[i].ID == oldID {
			c.records[i] = rec
			if oldID != rec.ID {
				c.version++
			}
			return true
		}
	}
	return false
}

// Remove drops the record with the given id and returns it, so callers can
// reinsert it if the server rejects the deletion.
func (c *Cache) Remove(id string) (carrier.Carrier, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.records {
		if c.records[i].ID == id {
			removed := c.records[i]
			c.records = append(c.records[:i], c.records[i+1:]...)
			c.version++
			return removed, true
		}
	}
	return carrier.Carrier{}, false
}

// Snapshot serializes the collection, preserving order. Byte-for-byte equal
// snapshots mean the visible state is identical.
func (c *Cache) Snapshot() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sonic.Marshal(c.records)
}

func sameIDSequence(a, b []carrier.Carrier) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
