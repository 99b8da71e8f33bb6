package model

import "time"

type Shop struct {
	DTO
	OwnerUserId string     `gorm:"uniqueIndex;size:64" json:"ownerUserId"`
	ShopName    string     `gorm:"size:120" json:"shopName"`
	Slug        string     `gorm:"uniqueIndex;size:140" json:"slug"`
	UpiId       *string    `json:"upiId,omitempty"`
	UpiName     *string    `json:"upiName,omitempty"`
	// ManualPayment lets the owner confirm cash payments, bypassing the
	// unpaid gate on status progression.
	ManualPayment bool       `gorm:"default:false" json:"manualPayment"`
	IsOpen        bool       `gorm:"default:true" json:"isOpen"`
	IsActive      bool       `gorm:"default:true" json:"isActive"`
	ReopenTime    *time.Time `json:"reopenTime,omitempty"`
	MenuItems     []MenuItem `gorm:"foreignKey:ShopId" json:"menuItems,omitempty"`
}

// PublicShop is the listing shape exposed to customers: no UPI fields.
type PublicShop struct {
	ID         string     `json:"id"`
	ShopName   string     `json:"shopName"`
	Slug       string     `json:"slug"`
	IsOpen     bool       `json:"isOpen"`
	IsActive   bool       `json:"isActive"`
	ReopenTime *time.Time `json:"reopenTime,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
