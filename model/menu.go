package model

type MenuItem struct {
	DTO
	ShopId      string  `gorm:"type:uuid;index" json:"shopId"`
	Name        string  `gorm:"size:120" json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `gorm:"size:20" json:"category"` // breakfast, lunch, snacks, drinks
	ImageUrl    *string `json:"imageUrl,omitempty"`
	InStock     bool    `gorm:"default:true" json:"inStock"`
}
