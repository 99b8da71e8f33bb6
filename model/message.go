package model

// OrderMessage is one chat line scoped to an order; append-only, visible
// only to the order's two parties.
type OrderMessage struct {
	DTO
	OrderId      string `gorm:"type:uuid;index" json:"orderId"`
	SenderUserId string `gorm:"size:64" json:"senderUserId"`
	SenderRole   string `gorm:"size:12" json:"senderRole"` // student, shopkeeper
	Message      string `gorm:"size:500" json:"message"`
	IsRead       bool   `gorm:"default:false" json:"isRead"`
}
