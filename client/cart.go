package client

import (
	"sort"
	"sync"
)

// CartLine is one picked item, keyed by shop and menu item.
type CartLine struct {
	ShopId   string
	ItemId   string
	Name     string
	Price    float64
	Quantity int
}

type cartKey struct {
	shopId string
	itemId string
}

// Cart accumulates picked items across shops. It holds display snapshots
// only; the backend re-prices every line from the live menu at order
// time, so nothing here is authoritative.
type Cart struct {
	mu    sync.Mutex
	lines map[cartKey]CartLine
}

func NewCart() *Cart {
	return &Cart{lines: make(map[cartKey]CartLine)}
}

// Add puts qty more of the item in the cart, merging with an existing
// line for the same (shop, item).
func (c *Cart) Add(shopId, itemId, name string, price float64, qty int) {
	if qty <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cartKey{shopId, itemId}
	line, ok := c.lines[key]
	if !ok {
		line = CartLine{ShopId: shopId, ItemId: itemId, Name: name, Price: price}
	}
	line.Quantity += qty
	c.lines[key] = line
}

// UpdateQuantity sets an absolute quantity; zero or less removes the
// line.
func (c *Cart) UpdateQuantity(shopId, itemId string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cartKey{shopId, itemId}
	if qty <= 0 {
		delete(c.lines, key)
		return
	}
	if line, ok := c.lines[key]; ok {
		line.Quantity = qty
		c.lines[key] = line
	}
}

func (c *Cart) Remove(shopId, itemId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lines, cartKey{shopId, itemId})
}

// ClearShop drops every line for one shop, e.g. after that shop's order
// was placed.
func (c *Cart) ClearShop(shopId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.lines {
		if key.shopId == shopId {
			delete(c.lines, key)
		}
	}
}

// Lines returns the shop's lines sorted by name for stable rendering.
func (c *Cart) Lines(shopId string) []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []CartLine
	for key, line := range c.lines {
		if key.shopId == shopId {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ShopTotal is the display total for one shop's lines.
func (c *Cart) ShopTotal(shopId string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for key, line := range c.lines {
		if key.shopId == shopId {
			total += line.Price * float64(line.Quantity)
		}
	}
	return total
}

// ItemCount is the total quantity across all shops, for the cart badge.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}
