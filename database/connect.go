package database

import (
	"campus_canteen/config"
	"campus_canteen/model"
	"fmt"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	p := config.Config("DB_PORT")
	port, err := strconv.ParseUint(p, 10, 32)

	if err != nil {
		panic("failed to parse database port")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", config.Config("DB_HOST"), port, config.Config("DB_USER"), config.Config("DB_PASSWORD"), config.Config("DB_NAME"))
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		panic("failed to connect database")
	}

	fmt.Println("Connection Opened to Database")
	DB.AutoMigrate(
		&model.Shop{},
		&model.MenuItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderMessage{},
		&model.Notification{},
		&model.FavouriteShop{},
		&model.FavouriteItem{},
		&model.ShopkeeperVerification{},
	)
	fmt.Println("Database Migrated")

	SeedData(DB)
}
