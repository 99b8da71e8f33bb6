// Package client is the sync side of the order system: it keeps a local
// view of orders, chat and notifications consistent with the backend by
// merging the durable change feed with the ephemeral broadcast path and
// a coarse fallback poll. It is transport-agnostic; callers plug in the
// fetch/mutate/broadcast implementations (HTTP, websocket, in-memory in
// tests) through small interfaces.
package client

import (
	"encoding/json"
	"errors"
	"time"
)

// Typed failures mirrored from the backend's keyError taxonomy.
var (
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("state changed under you")
	ErrAuthorization = errors.New("not allowed")
	ErrTransient     = errors.New("service unavailable")
)

// Event types as they appear on the wire.
const (
	EventInsert   = "INSERT"
	EventUpdate   = "UPDATE"
	EventDelete   = "DELETE"
	EventBaseline = "BASELINE"
)

// Frame is one feed/broadcast payload: either a baseline (Rows) or a
// single row change (New/Old).
type Frame struct {
	Table string          `json:"table"`
	Type  string          `json:"type"`
	Rows  json.RawMessage `json:"rows,omitempty"`
	New   json.RawMessage `json:"new,omitempty"`
	Old   json.RawMessage `json:"old,omitempty"`
}

// DecodeFrame parses a raw feed payload.
func DecodeFrame(payload []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// OrderRecord is the order row as delivered on the feed.
type OrderRecord struct {
	ID                   string    `json:"id"`
	UserId               string    `json:"userId"`
	ShopId               string    `json:"shopId"`
	Status               string    `json:"status"`
	PaymentStatus        string    `json:"paymentStatus"`
	Total                float64   `json:"total"`
	Notes                *string   `json:"notes,omitempty"`
	Utr                  *string   `json:"utr,omitempty"`
	PaymentScreenshotUrl *string   `json:"paymentScreenshotUrl,omitempty"`
	PaymentVerified      bool      `json:"paymentVerified"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// MessageRecord is one chat row as delivered on the feed or broadcast.
type MessageRecord struct {
	ID           string    `json:"id"`
	OrderId      string    `json:"orderId"`
	SenderUserId string    `json:"senderUserId"`
	SenderRole   string    `json:"senderRole"`
	Message      string    `json:"message"`
	IsRead       bool      `json:"isRead"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NotificationRecord is one inbox row as delivered on the feed.
type NotificationRecord struct {
	ID        string    `json:"id"`
	UserId    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	OrderId   *string   `json:"orderId,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
