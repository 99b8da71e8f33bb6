package model

type FavouriteShop struct {
	DTO
	UserId string `gorm:"size:64;uniqueIndex:idx_fav_shop" json:"userId"`
	ShopId string `gorm:"type:uuid;uniqueIndex:idx_fav_shop" json:"shopId"`
	Shop   *Shop  `json:"shop,omitempty"`
}

type FavouriteItem struct {
	DTO
	UserId     string    `gorm:"size:64;uniqueIndex:idx_fav_item" json:"userId"`
	MenuItemId string    `gorm:"type:uuid;uniqueIndex:idx_fav_item" json:"menuItemId"`
	MenuItem   *MenuItem `json:"menuItem,omitempty"`
}
