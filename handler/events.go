package handler

import (
	"campus_canteen/config"
	"campus_canteen/model"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jinzhu/copier"
	"github.com/redis/go-redis/v9"
)

// Event types mirrored by the client sync layer.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// ChangeEvent is the row-change envelope published on the feed channels
// after a commit. Old carries only the fields listeners diff against.
type ChangeEvent struct {
	Table string         `json:"table"`
	Type  string         `json:"type"`
	New   any            `json:"new,omitempty"`
	Old   map[string]any `json:"old,omitempty"`
}

// OrderRow is the order payload placed on the wire: the row itself
// without preloaded associations.
type OrderRow struct {
	ID                   string     `json:"id"`
	UserId               string     `json:"userId"`
	ShopId               string     `json:"shopId"`
	Status               string     `json:"status"`
	PaymentStatus        string     `json:"paymentStatus"`
	Total                float64    `json:"total"`
	Notes                *string    `json:"notes,omitempty"`
	Utr                  *string    `json:"utr,omitempty"`
	PaymentScreenshotUrl *string    `json:"paymentScreenshotUrl,omitempty"`
	PaymentVerified      bool       `json:"paymentVerified"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

var redisClient = newRedisClient()

func newRedisClient() *redis.Client {
	addr := config.Config("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	return redis.NewClient(&redis.Options{Addr: addr})
}

// Feed channel names. One scope per channel, clients subscribe to the
// scope they render.
func OrdersUserChannel(userId string) string  { return fmt.Sprintf("orders-user-%s", userId) }
func OrdersShopChannel(shopId string) string  { return fmt.Sprintf("orders-shop-%s", shopId) }
func OrderChatChannel(orderId string) string  { return fmt.Sprintf("order-chat-%s", orderId) }
func ChatBroadcastChannel(orderId string) string {
	return fmt.Sprintf("chat-broadcast-%s", orderId)
}
func NotificationsChannel(userId string) string {
	return fmt.Sprintf("notifications-%s", userId)
}

const ShopsChannel = "shops-all"

func publishChange(channel string, event ChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event for %s: %v", event.Type, channel, err)
		return
	}
	if err := redisClient.Publish(context.Background(), channel, payload).Err(); err != nil {
		log.Printf("failed to publish %s event on %s: %v", event.Type, channel, err)
	}
}

// PublishOrderEvent fans an order row change out to the owning customer
// and the shop owner scopes. old carries the previous status/payment
// fields so dispatchers can diff without another fetch.
func PublishOrderEvent(eventType string, order *model.Order, old map[string]any) {
	var row OrderRow
	if err := copier.Copy(&row, order); err != nil {
		log.Printf("failed to copy order %s into event row: %v", order.ID, err)
		return
	}
	event := ChangeEvent{Table: "orders", Type: eventType, New: row, Old: old}
	publishChange(OrdersUserChannel(order.UserId), event)
	publishChange(OrdersShopChannel(order.ShopId), event)
}

// PublishMessageEvent puts a committed chat row on the durable feed path.
func PublishMessageEvent(eventType string, msg *model.OrderMessage) {
	publishChange(OrderChatChannel(msg.OrderId), ChangeEvent{
		Table: "order_messages", Type: eventType, New: msg,
	})
}

// BroadcastChatMessage pushes a confirmed chat row on the ephemeral
// low-latency path. No replay, no delivery guarantee; the feed remains
// the source of truth.
func BroadcastChatMessage(msg *model.OrderMessage) {
	publishChange(ChatBroadcastChannel(msg.OrderId), ChangeEvent{
		Table: "order_messages", Type: EventInsert, New: msg,
	})
}

func PublishNotificationEvent(n *model.Notification) {
	publishChange(NotificationsChannel(n.UserId), ChangeEvent{
		Table: "notifications", Type: EventInsert, New: n,
	})
}

// PublishShopEvent publishes to the public shops channel, so only the
// public projection of the row goes on the wire.
func PublishShopEvent(eventType string, shop *model.Shop) {
	publishChange(ShopsChannel, ChangeEvent{Table: "shops", Type: eventType, New: toPublicShop(shop)})
}
