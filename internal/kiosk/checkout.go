package kiosk

import (
	"ProjectKiosk/internal/dialogue"
)

// Checkout is the counter zone the operator drags items onto. Order is kept
// for display; sale matching ignores it.
type Checkout struct {
	items []dialogue.ItemCategory
}

// Add places one item on the counter.
func (c *Checkout) Add(item dialogue.ItemCategory) {
	c.items = append(c.items, item)
}

// Remove returns one item of the given category to the shelf.
func (c *Checkout) Remove(item dialogue.ItemCategory) bool {
	for i := len(c.items) - 1; i >= 0; i-- {
		if c.items[i] == item {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot implements dialogue.Checkout.
func (c *Checkout) Snapshot() []dialogue.ItemCategory {
	return append([]dialogue.ItemCategory(nil), c.items...)
}

// RemoveSold implements dialogue.Checkout. Sold items leave the counter.
func (c *Checkout) RemoveSold(sold []dialogue.ItemCategory) {
	for _, item := range sold {
		c.Remove(item)
	}
}

// Clear empties the counter.
func (c *Checkout) Clear() { c.items = nil }

// Len returns the number of items on the counter.
func (c *Checkout) Len() int { return len(c.items) }

// Total sums the unit prices on the counter.
func (c *Checkout) Total() float64 { return dialogue.Total(c.items) }
