package handler

import (
	"campus_canteen/database"
	"campus_canteen/model"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

var reopenScheduler gocron.Scheduler

// StartShopReopenScheduler reopens shops whose scheduled reopen time has
// passed, so a shopkeeper can close for lunch and forget about it.
func StartShopReopenScheduler() {
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("failed to create shop-reopen scheduler: %v", err)
		return
	}

	_, err = s.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(reopenDueShops),
	)
	if err != nil {
		log.Printf("failed to schedule shop reopen job: %v", err)
		return
	}

	reopenScheduler = s
	s.Start()
	log.Println("shop-reopen scheduler started (every minute)")
}

func StopShopReopenScheduler() {
	if reopenScheduler != nil {
		if err := reopenScheduler.Shutdown(); err != nil {
			log.Printf("failed to stop shop-reopen scheduler: %v", err)
		}
	}
}

func reopenDueShops() {
	now := time.Now()

	var due []model.Shop
	if err := database.DB.
		Where("is_active = ? AND is_open = ? AND reopen_time IS NOT NULL AND reopen_time <= ?", true, false, now).
		Find(&due).Error; err != nil {
		log.Printf("shop reopen query failed: %v", err)
		return
	}

	for i := range due {
		shop := &due[i]
		if err := database.DB.Model(shop).
			Updates(map[string]any{"is_open": true, "reopen_time": nil}).Error; err != nil {
			log.Printf("failed to reopen shop %s: %v", shop.ID, err)
			continue
		}
		shop.IsOpen = true
		shop.ReopenTime = nil
		PublishShopEvent(EventUpdate, shop)
		log.Printf("reopened shop %s (%s)", shop.ID, shop.ShopName)
	}
}
