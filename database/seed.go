package database

import (
	"campus_canteen/model"
	"campus_canteen/utils"
	"log"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// SeedData creates a demo shop with a small menu so a fresh environment
// has something to order from.
func SeedData(db *gorm.DB) {
	var count int64
	db.Model(&model.Shop{}).Count(&count)
	if count > 0 {
		return
	}

	shop := model.Shop{
		OwnerUserId: "seed_shopkeeper",
		ShopName:    "Main Canteen",
		Slug:        slug.Make("Main Canteen"),
		UpiId:       utils.StringPtr("maincanteen@upi"),
		UpiName:     utils.StringPtr("Main Canteen"),
		IsOpen:      true,
		IsActive:    true,
	}
	if err := db.Where(model.Shop{OwnerUserId: shop.OwnerUserId}).FirstOrCreate(&shop).Error; err != nil {
		log.Println("failed to seed shop:", err)
		return
	}

	items := []model.MenuItem{
		{ShopId: shop.ID, Name: "Samosa", Price: 20, Category: "snacks", InStock: true},
		{ShopId: shop.ID, Name: "Masala Dosa", Price: 60, Category: "breakfast", InStock: true},
		{ShopId: shop.ID, Name: "Veg Thali", Price: 90, Category: "lunch", InStock: true},
		{ShopId: shop.ID, Name: "Chai", Price: 10, Category: "drinks", InStock: true},
	}
	for _, item := range items {
		if err := db.Where(model.MenuItem{ShopId: item.ShopId, Name: item.Name}).FirstOrCreate(&item).Error; err != nil {
			log.Println("failed to seed menu item:", item.Name, "error:", err)
		}
	}
}
