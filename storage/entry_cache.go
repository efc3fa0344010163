package storage

import (
	"github.com/samber/lo"

	"github.com/luma/racedirector/protocol"
)

// EntryCache is the client side copy of the session's entry list. It keeps
// entries in entry list order, keyed by car index.
//
// EntryCache is not safe for concurrent use. It has a single owner, the
// dispatch path of client.Conn, and every read hands out copies so nothing
// outside that path can observe a half applied update.
type EntryCache struct {
	order   []uint16
	entries map[uint16]*protocol.CarEntry
}

func NewEntryCache() *EntryCache {
	return &EntryCache{
		order:   make([]uint16, 0),
		entries: make(map[uint16]*protocol.CarEntry),
	}
}

// Reset empties the cache and rebuilds it with a placeholder entry for every
// car index. Duplicate indices are kept once.
func (c *EntryCache) Reset(carIndices []uint16) {
	c.order = make([]uint16, 0, len(carIndices))
	c.entries = make(map[uint16]*protocol.CarEntry, len(carIndices))

	for _, idx := range lo.Uniq(carIndices) {
		entry := protocol.NewCarEntry(idx)
		c.order = append(c.order, idx)
		c.entries[idx] = &entry
	}
}

// Patch replaces the details of an existing entry. It returns false, and
// changes nothing, if the car isn't in the cache.
func (c *EntryCache) Patch(details protocol.CarEntry) bool {
	entry, ok := c.entries[details.CarIndex]
	if !ok {
		return false
	}

	*entry = details.Clone()

	return true
}

// Lookup returns a copy of the entry for carIndex.
func (c *EntryCache) Lookup(carIndex uint16) (protocol.CarEntry, bool) {
	entry, ok := c.entries[carIndex]
	if !ok {
		return protocol.CarEntry{}, false
	}

	return entry.Clone(), true
}

// Get returns a copy of the entry for carIndex, or protocol.DefaultCarEntry
// if there is none.
func (c *EntryCache) Get(carIndex uint16) protocol.CarEntry {
	if entry, ok := c.Lookup(carIndex); ok {
		return entry
	}

	return protocol.DefaultCarEntry()
}

// DriverCount returns the size of the cached roster of a car, and false if
// the car isn't cached.
func (c *EntryCache) DriverCount(carIndex uint16) (int, bool) {
	entry, ok := c.entries[carIndex]
	if !ok {
		return 0, false
	}

	return len(entry.Drivers), true
}

func (c *EntryCache) Len() int {
	return len(c.order)
}

// Snapshot returns copies of every entry in entry list order.
func (c *EntryCache) Snapshot() []protocol.CarEntry {
	return lo.Map(c.order, func(idx uint16, _ int) protocol.CarEntry {
		return c.entries[idx].Clone()
	})
}

var _ protocol.EntryLookup = (*EntryCache)(nil)
