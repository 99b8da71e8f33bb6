package model

import (
	"campus_canteen/constants"
	"errors"
	"fmt"
)

type Order struct {
	DTO
	UserId               string      `gorm:"size:64;index" json:"userId"`
	ShopId               string      `gorm:"type:uuid;index" json:"shopId"`
	Shop                 *Shop       `json:"shop,omitempty"`
	Status               string      `gorm:"size:20;default:pending" json:"status"`
	PaymentStatus        string      `gorm:"size:10;default:unpaid" json:"paymentStatus"`
	Total                float64     `json:"total"` // frozen at creation, never client-supplied
	Notes                *string     `json:"notes,omitempty"`
	Utr                  *string     `json:"utr,omitempty"`
	PaymentScreenshotUrl *string     `json:"paymentScreenshotUrl,omitempty"`
	PaymentVerified      bool        `gorm:"default:false" json:"paymentVerified"`
	Items                []OrderItem `gorm:"foreignKey:OrderId" json:"items,omitempty"`
}

// OrderItem is one priced line, immutable after creation. Name and unit
// price are frozen copies so later menu edits never rewrite history.
type OrderItem struct {
	DTO
	OrderId    string  `gorm:"type:uuid;index" json:"orderId"`
	MenuItemId string  `gorm:"type:uuid" json:"menuItemId"`
	ItemName   string  `gorm:"size:120" json:"itemName"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// orderTransitions is the only legal edge set over Order.Status.
var orderTransitions = map[string][]string{
	constants.ORDER_PENDING:   {constants.ORDER_ACCEPTED, constants.ORDER_REJECTED, constants.ORDER_CANCELLED},
	constants.ORDER_ACCEPTED:  {constants.ORDER_PREPARING},
	constants.ORDER_PREPARING: {constants.ORDER_READY},
	constants.ORDER_READY:     {constants.ORDER_COMPLETED},
}

var (
	ErrBadTransition   = errors.New("status transition not allowed")
	ErrPaymentGate     = errors.New("order must be paid before it can progress")
	ErrPaymentNotOpen  = errors.New("payment status can only move from unpaid to paid")
	ErrItemUnavailable = errors.New("item is out of stock")
	ErrBadQuantity     = errors.New("quantity must be positive")
	ErrShopNotFound    = errors.New("shop not found")
	ErrShopClosed      = errors.New("shop is closed")
	ErrUnknownItem     = errors.New("menu item not found")
)

// BuildOrderItem freezes one menu line into an order item at the menu's
// current price and name, rejecting out-of-stock items and non-positive
// quantities. The caller is expected to hold a lock on the menu row.
func BuildOrderItem(item MenuItem, quantity int) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, ErrBadQuantity
	}
	if !item.InStock {
		return OrderItem{}, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}
	return OrderItem{
		MenuItemId: item.ID,
		ItemName:   item.Name,
		Quantity:   quantity,
		Price:      item.Price,
	}, nil
}

// OrderTotal sums the frozen line totals.
func OrderTotal(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminalStatus(status string) bool {
	switch status {
	case constants.ORDER_COMPLETED, constants.ORDER_REJECTED, constants.ORDER_CANCELLED:
		return true
	}
	return false
}

// NextStatusAllowed checks the transition graph plus the payment gate:
// once accepted, an unpaid order may not progress further unless the shop
// takes manual/cash confirmation.
func (o *Order) NextStatusAllowed(newStatus string, manualPayment bool) error {
	if !CanTransition(o.Status, newStatus) {
		return ErrBadTransition
	}
	if o.Status == constants.ORDER_ACCEPTED &&
		o.PaymentStatus == constants.PAYMENT_UNPAID && !manualPayment {
		return ErrPaymentGate
	}
	return nil
}

// PaymentTransitionAllowed enforces the monotonic unpaid -> paid move.
func (o *Order) PaymentTransitionAllowed(newStatus string) error {
	if o.PaymentStatus != constants.PAYMENT_UNPAID || newStatus != constants.PAYMENT_PAID {
		return ErrPaymentNotOpen
	}
	return nil
}
