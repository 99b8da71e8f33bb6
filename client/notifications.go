package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"campus_canteen/constants"
)

// Alert sounds. Presentation-only hints, the UI decides what they mean.
const (
	SoundStatus   = "status"
	SoundNewOrder = "new-order"
	SoundChat     = "chat"
)

// Alert is a user-facing toast derived from a feed event.
type Alert struct {
	Title   string
	Message string
	Sound   string
	OrderId string
}

var statusAlerts = map[string]string{
	constants.ORDER_ACCEPTED:  "Your order was accepted",
	constants.ORDER_REJECTED:  "Your order was rejected",
	constants.ORDER_PREPARING: "Your order is being prepared",
	constants.ORDER_READY:     "Your order is ready for pickup",
	constants.ORDER_COMPLETED: "Order completed, enjoy!",
	constants.ORDER_CANCELLED: "Your order was cancelled",
}

// Dispatcher turns feed frames into alerts for one client. It never
// mutates state, and it is idempotent per underlying change: the same
// event arriving on both the feed and a fallback poll fires the alert
// once.
const seenGenerationCap = 4096

type Dispatcher struct {
	mu         sync.Mutex
	selfUserId string
	role       string
	sink       func(Alert)
	seen       map[string]struct{}
	prevSeen   map[string]struct{}
}

func NewDispatcher(selfUserId, role string, sink func(Alert)) *Dispatcher {
	return &Dispatcher{
		selfUserId: selfUserId,
		role:       role,
		sink:       sink,
		seen:       make(map[string]struct{}),
		prevSeen:   make(map[string]struct{}),
	}
}

// markSeen records an event identity and reports whether it was new.
// Memory is bounded by rotating generations rather than dropping
// everything at once, so a recently dispatched event stays remembered
// for at least one more full generation and a redelivery right after
// eviction cannot re-fire.
func (d *Dispatcher) markSeen(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.seen[key]; dup {
		return false
	}
	if _, dup := d.prevSeen[key]; dup {
		return false
	}
	if len(d.seen) >= seenGenerationCap {
		d.prevSeen = d.seen
		d.seen = make(map[string]struct{}, seenGenerationCap)
	}
	d.seen[key] = struct{}{}
	return true
}

// Dispatch inspects one frame and fires at most one alert.
func (d *Dispatcher) Dispatch(f Frame) error {
	switch f.Table {
	case "orders":
		return d.dispatchOrder(f)
	case "order_messages":
		return d.dispatchMessage(f)
	}
	return nil
}

func (d *Dispatcher) dispatchOrder(f Frame) error {
	if f.Type != EventInsert && f.Type != EventUpdate {
		return nil
	}
	var row OrderRecord
	if err := json.Unmarshal(f.New, &row); err != nil {
		return err
	}
	var old map[string]any
	if len(f.Old) > 0 {
		if err := json.Unmarshal(f.Old, &old); err != nil {
			return err
		}
	}

	key := fmt.Sprintf("orders|%s|%s|%d", f.Type, row.ID, row.UpdatedAt.UnixNano())
	if !d.markSeen(key) {
		return nil
	}

	if d.role == constants.ROLE_SHOPKEEPER {
		if f.Type == EventInsert {
			d.sink(Alert{Title: "New order", Message: "A new order just came in", Sound: SoundNewOrder, OrderId: row.ID})
			return nil
		}
		if proofNewlyPopulated(row, old) {
			d.sink(Alert{Title: "Verify payment", Message: "A customer submitted payment proof", Sound: SoundStatus, OrderId: row.ID})
		}
		return nil
	}

	// customer perspective
	if row.UserId != d.selfUserId {
		return nil
	}
	// An update touching other fields omits "status" from old; that is
	// not a status change, so the payment branch below must still run.
	if prev, ok := oldField(old, "status"); ok && prev != row.Status {
		if msg, known := statusAlerts[row.Status]; known {
			d.sink(Alert{Title: "Order update", Message: msg, Sound: SoundStatus, OrderId: row.ID})
			return nil
		}
	}
	if row.PaymentStatus == constants.PAYMENT_PAID && oldStr(old, "paymentStatus") == constants.PAYMENT_UNPAID {
		d.sink(Alert{Title: "Payment confirmed", Message: "Your payment was confirmed", Sound: SoundStatus, OrderId: row.ID})
	}
	return nil
}

func (d *Dispatcher) dispatchMessage(f Frame) error {
	if f.Type != EventInsert {
		return nil
	}
	var row MessageRecord
	if err := json.Unmarshal(f.New, &row); err != nil {
		return err
	}
	if row.SenderUserId == d.selfUserId {
		return nil
	}
	if !d.markSeen("order_messages|" + row.ID) {
		return nil
	}
	preview := row.Message
	if runes := []rune(preview); len(runes) > 80 {
		// rune-wise so a multi-byte character is never split
		preview = string(runes[:80])
	}
	d.sink(Alert{Title: "New message", Message: preview, Sound: SoundChat, OrderId: row.OrderId})
	return nil
}

func oldStr(old map[string]any, key string) string {
	s, _ := oldField(old, key)
	return s
}

// oldField distinguishes "field was not part of this change" (absent
// key) from "field previously held this value".
func oldField(old map[string]any, key string) (string, bool) {
	if old == nil {
		return "", false
	}
	v, ok := old[key]
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, true
}

// proofNewlyPopulated reports whether this update is the one that filled
// in the payment proof fields. The old map must carry the prior proof
// fields explicitly; an update that never touched them (a payment
// verify, say) is not a proof submission.
func proofNewlyPopulated(row OrderRecord, old map[string]any) bool {
	if row.Utr == nil && row.PaymentScreenshotUrl == nil {
		return false
	}
	prevUtr, hasUtr := oldField(old, "utr")
	prevShot, hasShot := oldField(old, "paymentScreenshotUrl")
	if !hasUtr && !hasShot {
		return false
	}
	return prevUtr == "" && prevShot == ""
}
