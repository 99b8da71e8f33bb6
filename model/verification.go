package model

import "time"

// ShopkeeperVerification holds the bcrypt hash of an emailed code a
// prospective shopkeeper must present before creating a shop.
type ShopkeeperVerification struct {
	DTO
	UserId    string    `gorm:"size:64;index" json:"userId"`
	Email     string    `gorm:"size:254" json:"email"`
	CodeHash  string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `gorm:"default:false" json:"used"`
}
