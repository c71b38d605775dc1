// Package cart holds a shopping cart and derives its pricing.
package cart

import (
	"math"

	"saniteetti/internal/model"
)

// ProductLookup resolves product ids against the catalog.
type ProductLookup interface {
	Product(id string) (model.Product, bool)
}

// Pricing holds the delivery rules applied to a cart.
type Pricing struct {
	FreeShippingThreshold float64
	FlatFee               float64
}

// DefaultPricing returns free delivery from 250 € and a 15 € flat fee below it.
func DefaultPricing() Pricing {
	return Pricing{FreeShippingThreshold: 250, FlatFee: 15}
}

// Shipping returns the delivery cost for a subtotal. An empty cart ships for free.
func (p Pricing) Shipping(subtotal float64, itemCount int) float64 {
	if itemCount == 0 || subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.FlatFee
}

// Item is a raw cart entry.
type Item struct {
	ProductID string
	Quantity  int
}

// Line is a cart entry resolved against the catalog.
type Line struct {
	Product   model.Product `json:"product"`
	Quantity  int           `json:"quantity"`
	LineTotal float64       `json:"lineTotal"`
}

// Totals are the derived amounts of a cart.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	Shipping  float64 `json:"shipping"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

// Cart maps product ids to positive quantities, keeping insertion order.
// A Cart is not safe for concurrent use.
type Cart struct {
	order       []string
	quantities  map[string]int
	orderPlaced bool
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{quantities: make(map[string]int)}
}

// Add increments the quantity of id by qty, clamping qty to at least 1.
func (c *Cart) Add(id string, qty int) {
	c.orderPlaced = false
	if qty < 1 {
		qty = 1
	}
	if _, ok := c.quantities[id]; !ok {
		c.order = append(c.order, id)
	}
	c.quantities[id] += qty
}

// Remove decrements the quantity of id by one and deletes the entry at zero.
func (c *Cart) Remove(id string) {
	c.orderPlaced = false
	qty, ok := c.quantities[id]
	if !ok {
		return
	}
	if qty <= 1 {
		c.delete(id)
		return
	}
	c.quantities[id] = qty - 1
}

// Drop deletes the entry for id regardless of quantity.
func (c *Cart) Drop(id string) {
	c.orderPlaced = false
	c.delete(id)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.orderPlaced = false
	c.order = nil
	c.quantities = make(map[string]int)
}

// Quantity returns the quantity held for id.
func (c *Cart) Quantity(id string) int {
	return c.quantities[id]
}

// Items returns the raw entries in insertion order.
func (c *Cart) Items() []Item {
	items := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, Item{ProductID: id, Quantity: c.quantities[id]})
	}
	return items
}

// Lines returns the entries that resolve to a product, in insertion order.
func (c *Cart) Lines(lookup ProductLookup) []Line {
	lines := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		p, ok := lookup.Product(id)
		if !ok {
			continue
		}
		qty := c.quantities[id]
		lines = append(lines, Line{
			Product:   p,
			Quantity:  qty,
			LineTotal: RoundCents(p.Price * float64(qty)),
		})
	}
	return lines
}

// Totals derives subtotal, shipping and total. Entries that no longer resolve
// to a product are excluded.
func (c *Cart) Totals(lookup ProductLookup, pricing Pricing) Totals {
	var t Totals
	var subtotal float64
	for _, line := range c.Lines(lookup) {
		subtotal += line.Product.Price * float64(line.Quantity)
		t.ItemCount += line.Quantity
	}
	t.Subtotal = RoundCents(subtotal)
	t.Shipping = pricing.Shipping(t.Subtotal, t.ItemCount)
	t.Total = RoundCents(t.Subtotal + t.Shipping)
	return t
}

// OrderPlaced reports whether an order was just completed from this cart.
func (c *Cart) OrderPlaced() bool {
	return c.orderPlaced
}

// MarkOrderPlaced flags the cart as just checked out. Any later mutation
// clears the flag.
func (c *Cart) MarkOrderPlaced() {
	c.orderPlaced = true
}

func (c *Cart) delete(id string) {
	if _, ok := c.quantities[id]; !ok {
		return
	}
	delete(c.quantities, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// RoundCents rounds v to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
