package model

import "time"

// CreateOrderInput is validated before reaching the order handler.
// Client-submitted prices are deliberately absent: every line is
// re-priced from the menu inside the creation transaction.
type CreateOrderInput struct {
	ShopId string           `json:"shopId" validate:"required,uuid4"`
	Notes  string           `json:"notes" validate:"max=300"`
	Items  []OrderLineInput `json:"items" validate:"required,min=1,dive"`
}

type OrderLineInput struct {
	MenuItemId string `json:"menuItemId" validate:"required,uuid4"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

type CreateShopInput struct {
	ShopName string `json:"shopName" validate:"required,min=2,max=120"`
	UpiId    string `json:"upiId" validate:"max=100"`
	UpiName  string `json:"upiName" validate:"max=120"`
}

type UpdateShopInput struct {
	ShopName      *string    `json:"shopName" validate:"omitempty,min=2,max=120"`
	UpiId         *string    `json:"upiId" validate:"omitempty,max=100"`
	UpiName       *string    `json:"upiName" validate:"omitempty,max=120"`
	ManualPayment *bool      `json:"manualPayment"`
	IsOpen        *bool      `json:"isOpen"`
	ReopenTime    *time.Time `json:"reopenTime"`
	IsActive      *bool      `json:"isActive"`
}

type MenuItemInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=120"`
	Description string  `json:"description" validate:"max=300"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Category    string  `json:"category" validate:"required,oneof=breakfast lunch snacks drinks"`
	ImageUrl    string  `json:"imageUrl" validate:"omitempty,url"`
	InStock     *bool   `json:"inStock"`
}
