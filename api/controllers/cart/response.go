package cart

import (
	"github.com/shopspring/decimal"

	cartsvc "github.com/techstore/storefront-backend/internal/cart"
)

type lineItemResponse struct {
	cartsvc.LineItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	ID    string             `json:"id"`
	Items []lineItemResponse `json:"items"`
	Count int                `json:"count"`
	Total decimal.Decimal    `json:"total"`
}

func newCartResponse(c *cartsvc.Cart) cartResponse {
	items := make([]lineItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, lineItemResponse{LineItem: item, Subtotal: item.Subtotal()})
	}
	return cartResponse{
		ID:    c.ID,
		Items: items,
		Count: c.Count(),
		Total: c.Total(),
	}
}
