package handler

import (
	"campus_canteen/constants"
	"campus_canteen/database"
	"campus_canteen/model"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// StalePendingAge is how long an order may sit in pending before the
// sweep cancels it.
const StalePendingAge = 5 * time.Hour

var staleOrderScheduler *cron.Cron

// StartStaleOrderScheduler runs the durable server-side staleness sweep.
// Clients keep their own best-effort sweep for instant feedback, but
// this one guarantees an unobserved order cannot stay pending forever.
func StartStaleOrderScheduler() {
	staleOrderScheduler = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := staleOrderScheduler.AddFunc("*/5 * * * *", CancelStalePendingOrders)
	if err != nil {
		log.Printf("failed to start stale-order scheduler: %v", err)
		return
	}

	staleOrderScheduler.Start()
	log.Println("stale-order scheduler started (every 5 minutes)")
}

func StopStaleOrderScheduler() {
	if staleOrderScheduler != nil {
		staleOrderScheduler.Stop()
		log.Println("stale-order scheduler stopped")
	}
}

// CancelStalePendingOrders cancels every order stuck in pending beyond
// the threshold. Each row goes through the same conditional cancel the
// manual path uses, so a concurrent accept still wins.
func CancelStalePendingOrders() {
	cutoff := time.Now().Add(-StalePendingAge)

	var stale []model.Order
	if err := database.DB.
		Where("status = ? AND created_at < ?", constants.ORDER_PENDING, cutoff).
		Find(&stale).Error; err != nil {
		log.Printf("stale-order sweep query failed: %v", err)
		return
	}

	cancelled := 0
	for i := range stale {
		ok, err := cancelIfPending(&stale[i])
		if err != nil {
			log.Printf("failed to cancel stale order %s: %v", stale[i].ID, err)
			continue
		}
		if ok {
			cancelled++
		}
	}

	if cancelled > 0 {
		log.Printf("stale-order sweep cancelled %d order(s)", cancelled)
	}
}
