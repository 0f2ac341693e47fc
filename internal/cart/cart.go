package cart

import (
	"github.com/shopspring/decimal"

	"github.com/techstore/storefront-backend/pkg/db/models"
)

// LineItem is a snapshot of a product taken when it was added to the cart.
type LineItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// Subtotal is price times quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one line item per product id, in insertion order.
type Cart struct {
	ID    string     `json:"id"`
	Items []LineItem `json:"items"`
}

func New(id string) *Cart {
	return &Cart{ID: id, Items: []LineItem{}}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add increments the quantity of an existing line or appends a new snapshot.
// Quantities below one add a single unit.
func (c *Cart) Add(product models.Product, qty int) {
	if qty < 1 {
		qty = 1
	}
	if i := c.indexOf(product.ID); i >= 0 {
		c.Items[i].Quantity += qty
		return
	}
	c.Items = append(c.Items, LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.PrimaryImage(),
		Quantity:  qty,
	})
}

// Remove drops the line for productID if present.
func (c *Cart) Remove(productID string) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// SetQuantity replaces the quantity of an existing line. Quantities below one
// and unknown products leave the cart unchanged; it reports whether a line changed.
func (c *Cart) SetQuantity(productID string, qty int) bool {
	if qty < 1 {
		return false
	}
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = qty
	return true
}

// Total is the exact sum of price times quantity over every line.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
}
