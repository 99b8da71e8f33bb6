package client

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"campus_canteen/constants"

	"github.com/google/uuid"
)

// MessageSender performs the durable chat write and returns the
// server-confirmed row (authoritative id and timestamp).
type MessageSender interface {
	SendMessage(ctx context.Context, orderId, body string) (MessageRecord, error)
}

// MessageBroadcaster pushes a confirmed row onto the ephemeral peer
// channel. Best-effort; the feed remains the source of truth.
type MessageBroadcaster interface {
	BroadcastMessage(ctx context.Context, orderId string, msg MessageRecord) error
}

// Conversation is the local chat view for one order. Optimistic sends
// show up immediately under a temporary id and are swapped for the
// confirmed row; feed and broadcast deliveries dedupe by id, and the
// local actor's own broadcast echo is ignored outright.
type Conversation struct {
	mu         sync.Mutex
	orderId    string
	selfUserId string
	rows       map[string]MessageRecord
	sender     MessageSender
	broadcast  MessageBroadcaster
}

func NewConversation(orderId, selfUserId string, sender MessageSender, broadcast MessageBroadcaster) *Conversation {
	return &Conversation{
		orderId:    orderId,
		selfUserId: selfUserId,
		rows:       make(map[string]MessageRecord),
		sender:     sender,
		broadcast:  broadcast,
	}
}

// Send applies the optimistic temp row, issues the durable write, then
// swaps the temp row for the confirmed one by temp-id (never by
// position). On failure the temp row is rolled back and the error
// surfaces to the caller.
func (cv *Conversation) Send(ctx context.Context, body, role string) (MessageRecord, error) {
	body = strings.TrimSpace(body)
	if body == "" || len(body) > constants.MAX_MESSAGE_LENGTH {
		return MessageRecord{}, ErrValidation
	}

	tempId := "temp-" + uuid.NewString()
	temp := MessageRecord{
		ID:           tempId,
		OrderId:      cv.orderId,
		SenderUserId: cv.selfUserId,
		SenderRole:   role,
		Message:      body,
		CreatedAt:    time.Now(),
	}
	cv.mu.Lock()
	cv.rows[tempId] = temp
	cv.mu.Unlock()

	confirmed, err := cv.sender.SendMessage(ctx, cv.orderId, body)
	cv.mu.Lock()
	delete(cv.rows, tempId)
	if err == nil {
		cv.rows[confirmed.ID] = confirmed
	}
	cv.mu.Unlock()
	if err != nil {
		return MessageRecord{}, err
	}

	if cv.broadcast != nil {
		_ = cv.broadcast.BroadcastMessage(ctx, cv.orderId, confirmed)
	}
	return confirmed, nil
}

// Apply merges one feed or broadcast frame. Frames for other orders are
// dropped, never appended to the wrong chat.
func (cv *Conversation) Apply(f Frame) error {
	if f.Table != "order_messages" {
		return nil
	}
	cv.mu.Lock()
	defer cv.mu.Unlock()

	switch f.Type {
	case EventBaseline:
		var rows []MessageRecord
		if err := json.Unmarshal(f.Rows, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			if r.OrderId == cv.orderId {
				cv.rows[r.ID] = r
			}
		}
	case EventInsert, EventUpdate:
		var row MessageRecord
		if err := json.Unmarshal(f.New, &row); err != nil {
			return err
		}
		if row.OrderId != cv.orderId {
			return nil
		}
		if row.SenderUserId == cv.selfUserId {
			// our own echo: the Send path already holds the confirmed
			// row, and an in-flight optimistic copy must not duplicate
			if _, ok := cv.rows[row.ID]; !ok && !cv.holdsOptimistic(row) {
				cv.rows[row.ID] = row
			}
			return nil
		}
		cv.rows[row.ID] = row
	case EventDelete:
		var row MessageRecord
		if err := json.Unmarshal(f.New, &row); err != nil {
			return err
		}
		delete(cv.rows, row.ID)
	}
	return nil
}

// holdsOptimistic reports whether a temp row with the same body from the
// local actor is still awaiting confirmation.
func (cv *Conversation) holdsOptimistic(row MessageRecord) bool {
	for id, r := range cv.rows {
		if strings.HasPrefix(id, "temp-") && r.Message == row.Message {
			return true
		}
	}
	return false
}

// Messages returns the chat oldest-first by creation time.
func (cv *Conversation) Messages() []MessageRecord {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	out := make([]MessageRecord, 0, len(cv.rows))
	for _, r := range cv.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
