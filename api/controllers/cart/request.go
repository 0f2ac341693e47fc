package cart

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=0,max=999"`
}

func (r addItemRequest) quantity() int {
	if r.Quantity < 1 {
		return 1
	}
	return r.Quantity
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"max=999"`
}
