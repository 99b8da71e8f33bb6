package model

type Notification struct {
	DTO
	UserId  string  `gorm:"size:64;index" json:"userId"`
	Title   string  `gorm:"size:120" json:"title"`
	Message string  `gorm:"size:300" json:"message"`
	Type    string  `gorm:"size:20" json:"type"` // chat, payment, order
	OrderId *string `gorm:"type:uuid" json:"orderId,omitempty"`
	IsRead  bool    `gorm:"default:false" json:"isRead"`
}
