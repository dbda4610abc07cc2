package dashboard

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"
)

// CartItem is one line of the cart mockup.
type CartItem struct {
	ID                 int64
	ProductID          int64
	Name               string
	Description        string
	Size               string
	Image              string
	OriginalPrice      decimal.Decimal
	DiscountedPrice    decimal.Decimal
	DiscountPercentage decimal.Decimal
	Quantity           int
}

// LineTotal is the discounted price times quantity.
func (it CartItem) LineTotal() decimal.Decimal {
	return it.DiscountedPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// LineSavings is what the discount saves on this line.
func (it CartItem) LineSavings() decimal.Decimal {
	return it.OriginalPrice.Sub(it.DiscountedPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Cart is a purely local shopping cart. It never talks to the backend.
type Cart struct {
	mu    sync.Mutex
	items []CartItem
}

// NewCart returns a cart holding copies of items.
func NewCart(items []CartItem) *Cart {
	return &Cart{items: slices.Clone(items)}
}

// MockCart returns the cart shown on the dashboard's cart page.
func MockCart() *Cart {
	return NewCart([]CartItem{
		{
			ID:                 1,
			ProductID:          1,
			Name:               "perfume",
			Description:        "perfume",
			Size:               "50ml",
			Image:              "/placeholder-product.jpg",
			OriginalPrice:      decimal.RequireFromString("23716.00"),
			DiscountedPrice:    decimal.RequireFromString("21344.40"),
			DiscountPercentage: decimal.NewFromInt(10),
			Quantity:           1,
		},
		{
			ID:                 2,
			ProductID:          2,
			Name:               "best perfume",
			Description:        "perfume 3",
			Size:               "100ml",
			Image:              "/placeholder-product.jpg",
			OriginalPrice:      decimal.RequireFromString("18480.00"),
			DiscountedPrice:    decimal.RequireFromString("17186.40"),
			DiscountPercentage: decimal.NewFromInt(7),
			Quantity:           3,
		},
	})
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// UpdateQuantity adds delta to an item's quantity, never going below one.
// It reports whether the item exists.
func (c *Cart) UpdateQuantity(id int64, delta int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity = max(1, c.items[i].Quantity+delta)
			return true
		}
	}
	return false
}

// Remove drops an item. It reports whether the item existed.
func (c *Cart) Remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(it CartItem) bool { return it.ID == id })
	return len(c.items) != n
}

// Subtotal is the sum of original prices times quantities.
func (c *Cart) Subtotal() decimal.Decimal {
	return c.sum(func(it CartItem) decimal.Decimal {
		return it.OriginalPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	})
}

// Total is the sum of discounted line totals.
func (c *Cart) Total() decimal.Decimal {
	return c.sum(CartItem.LineTotal)
}

// Savings is Subtotal minus Total.
func (c *Cart) Savings() decimal.Decimal {
	return c.Subtotal().Sub(c.Total())
}

// ItemCount is the total quantity across lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) sum(fn func(CartItem) decimal.Decimal) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(fn(it))
	}
	return total
}
