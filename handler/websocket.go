package handler

import (
	"campus_canteen/constants"
	"campus_canteen/database"
	"campus_canteen/model"
	"context"
	"log"

	"github.com/gofiber/contrib/websocket"
)

// BaselineFrame is the first frame on every socket: the authoritative
// rows for the scope at subscribe time. Everything after it is deltas.
type BaselineFrame struct {
	Table string `json:"table"`
	Type  string `json:"type"` // always BASELINE
	Rows  any    `json:"rows"`
}

func writeBaseline(c *websocket.Conn, table string, rows any) bool {
	frame := BaselineFrame{Table: table, Type: "BASELINE", Rows: rows}
	if err := c.WriteJSON(frame); err != nil {
		log.Printf("failed to write baseline frame (%s): %v", table, err)
		return false
	}
	return true
}

// pumpChannels forwards redis pub/sub payloads for the given channels to
// the websocket until either side goes away. Payloads are already
// ChangeEvent JSON, they pass through untouched.
func pumpChannels(c *websocket.Conn, channels ...string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := redisClient.Subscribe(ctx, channels...)
	defer pubsub.Close()

	// Detect client close; no inbound messages are expected.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	feed := pubsub.Channel()
	for {
		select {
		case msg, ok := <-feed:
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// OrderUserSocket streams order changes scoped to the authenticated
// customer.
func OrderUserSocket(c *websocket.Conn) {
	defer c.Close()
	userId, _ := c.Locals("userId").(string)
	if userId == "" {
		return
	}

	var orders []model.Order
	if err := database.DB.
		Preload("Items").
		Where("user_id = ?", userId).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		log.Printf("failed to load order baseline for user %s: %v", userId, err)
		return
	}
	if !writeBaseline(c, "orders", orders) {
		return
	}

	pumpChannels(c, OrdersUserChannel(userId))
}

// OrderShopSocket streams order changes for the authenticated
// shopkeeper's shop.
func OrderShopSocket(c *websocket.Conn) {
	defer c.Close()
	userId, _ := c.Locals("userId").(string)
	if userId == "" {
		return
	}

	var shop model.Shop
	if err := database.DB.Where("owner_user_id = ? AND is_active = ?", userId, true).First(&shop).Error; err != nil {
		log.Printf("no active shop for user %s: %v", userId, err)
		return
	}

	var orders []model.Order
	if err := database.DB.
		Preload("Items").
		Where("shop_id = ?", shop.ID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		log.Printf("failed to load order baseline for shop %s: %v", shop.ID, err)
		return
	}
	if !writeBaseline(c, "orders", orders) {
		return
	}

	pumpChannels(c, OrdersShopChannel(shop.ID))
}

// ChatSocket streams chat for one order over both delivery paths: the
// durable feed channel and the ephemeral broadcast channel. Only the
// order's two parties may attach.
func ChatSocket(c *websocket.Conn) {
	defer c.Close()
	userId, _ := c.Locals("userId").(string)
	role, _ := c.Locals("role").(string)
	orderId := c.Params("orderId")
	if userId == "" || orderId == "" {
		return
	}

	var order model.Order
	if err := database.DB.Preload("Shop").First(&order, "id = ?", orderId).Error; err != nil {
		log.Printf("chat socket: order %s not found: %v", orderId, err)
		return
	}
	isParty := order.UserId == userId ||
		(role == constants.ROLE_SHOPKEEPER && order.Shop != nil && order.Shop.OwnerUserId == userId)
	if !isParty {
		log.Printf("chat socket: user %s is not a party of order %s", userId, orderId)
		return
	}

	var messages []model.OrderMessage
	if err := database.DB.
		Where("order_id = ?", orderId).
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		log.Printf("failed to load chat baseline for order %s: %v", orderId, err)
		return
	}
	if !writeBaseline(c, "order_messages", messages) {
		return
	}

	pumpChannels(c, OrderChatChannel(orderId), ChatBroadcastChannel(orderId))
}

// NotificationSocket streams the authenticated user's notification feed.
func NotificationSocket(c *websocket.Conn) {
	defer c.Close()
	userId, _ := c.Locals("userId").(string)
	if userId == "" {
		return
	}

	var rows []model.Notification
	if err := database.DB.
		Where("user_id = ?", userId).
		Order("created_at desc").
		Limit(50).
		Find(&rows).Error; err != nil {
		log.Printf("failed to load notification baseline for %s: %v", userId, err)
		return
	}
	if !writeBaseline(c, "notifications", rows) {
		return
	}

	pumpChannels(c, NotificationsChannel(userId))
}

// ShopsSocket streams shop open/close changes to everyone (public data
// only is published on this channel).
func ShopsSocket(c *websocket.Conn) {
	defer c.Close()

	var shops []model.Shop
	if err := database.DB.Where("is_active = ?", true).Order("shop_name asc").Find(&shops).Error; err != nil {
		log.Printf("failed to load shops baseline: %v", err)
		return
	}
	public := make([]model.PublicShop, 0, len(shops))
	for _, s := range shops {
		public = append(public, toPublicShop(&s))
	}
	if !writeBaseline(c, "shops", public) {
		return
	}

	pumpChannels(c, ShopsChannel)
}
