package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"campus_canteen/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectAlerts() (*[]Alert, func(Alert)) {
	var alerts []Alert
	return &alerts, func(a Alert) { alerts = append(alerts, a) }
}

func dispatchOrderFrame(t *testing.T, d *Dispatcher, eventType string, row OrderRecord, old map[string]any) {
	t.Helper()
	payload, err := json.Marshal(row)
	require.NoError(t, err)
	frame := Frame{Table: "orders", Type: eventType, New: payload}
	if old != nil {
		oldPayload, err := json.Marshal(old)
		require.NoError(t, err)
		frame.Old = oldPayload
	}
	require.NoError(t, d.Dispatch(frame))
}

func TestCustomerStatusChangeAlert(t *testing.T) {
	alerts, sink := collectAlerts()
	d := NewDispatcher("me", constants.ROLE_STUDENT, sink)

	dispatchOrderFrame(t, d, EventUpdate,
		OrderRecord{ID: "o1", UserId: "me", Status: constants.ORDER_READY, UpdatedAt: time.Now()},
		map[string]any{"status": constants.ORDER_PREPARING})

	require.Len(t, *alerts, 1)
	assert.Equal(t, SoundStatus, (*alerts)[0].Sound)
	assert.Contains(t, (*alerts)[0].Message, "ready")
}

func TestDispatcherIsIdempotentPerEvent(t *testing.T) {
	alerts, sink := collectAlerts()
	d := NewDispatcher("me", constants.ROLE_STUDENT, sink)
	now := time.Now()

	row := OrderRecord{ID: "o1", UserId: "me", Status: constants.ORDER_ACCEPTED, UpdatedAt: now}
	old := map[string]any{"status": constants.ORDER_PENDING}

	// same change arrives on the feed and again via a fallback poll
	dispatchOrderFrame(t, d, EventUpdate, row, old)
	dispatchOrderFrame(t, d, EventUpdate, row, old)
	require.Len(t, *alerts, 1)

	// a genuinely new change still fires
	row.Status = constants.ORDER_PREPARING
	row.UpdatedAt = now.Add(time.Second)
	dispatchOrderFrame(t, d, EventUpdate, row, map[string]any{"status": constants.ORDER_ACCEPTED})
	assert.Len(t, *alerts, 2)
}

func TestShopkeeperNewOrderAlert(t *testing.T) {
	alerts, sink := collectAlerts()
	d := NewDispatcher("owner", constants.ROLE_SHOPKEEPER, sink)

	dispatchOrderFrame(t, d, EventInsert,
		OrderRecord{ID: "o1", UserId: "student", Status: constants.ORDER_PENDING, UpdatedAt: time.Now()}, nil)

	require.Len(t, *alerts, 1)
	assert.Equal(t, SoundNewOrder, (*alerts)[0].Sound)
	assert.Equal(t, "New order", (*alerts)[0].Title)
}

func TestShopkeeperPaymentProofAlert(t *testing.T) {
	alerts, sink := collectAlerts()
	d := NewDispatcher("owner", constants.ROLE_SHOPKEEPER, sink)
	utr := "UTR123456"

	dispatchOrderFrame(t, d, EventUpdate,
		OrderRecord{ID: "o1", UserId: "student", Status: constants.ORDER_ACCEPTED, Utr: &utr, UpdatedAt: time.Now()},
		map[string]any{"utr": "", "paymentScreenshotUrl": ""})

	require.Len(t, *alerts, 1)
	assert.Equal(t, "Verify payment", (*alerts)[0].Title)
}

func TestCustomerPaymentConfirmedAlert(t *testing.T) {
	alerts, sink := collectAlerts()
	d := NewDispatcher("me", constants.ROLE_STUDENT, sink)

	dispatchOrderFrame(t, d, EventUpdate,
		OrderRecord{
			ID: "o1", UserId: "me", Status: constants.ORDER_ACCEPTED,
			PaymentStatus: constants.PAYMENT_PAID, UpdatedAt: time.Now(),
		},
		map[string]any{"status": constants.ORDER_ACCEPTED, "paymentStatus": constants.PAYMENT_UNPAID})

	require.Len(t, *alerts, 1)
	assert.Equal(t, "Payment confirmed", (*alerts)[0].Title)
}

func TestPaymentConfirmedWithoutOldStatusKey(t *testing.T) {
	alerts, sink := collectAlerts()
	d := NewDispatcher("me", constants.ROLE_STUDENT, sink)

	// a payment-only update may omit "status" from old entirely; that is
	// not a status change and must not mask the payment alert
	dispatchOrderFrame(t, d, EventUpdate,
		OrderRecord{
			ID: "o1", UserId: "me", Status: constants.ORDER_ACCEPTED,
			PaymentStatus: constants.PAYMENT_PAID, UpdatedAt: time.Now(),
		},
		map[string]any{"paymentStatus": constants.PAYMENT_UNPAID})

	require.Len(t, *alerts, 1)
	assert.Equal(t, "Payment confirmed", (*alerts)[0].Title)
}

func TestProofSubmissionDoesNotRefireStatusAlert(t *testing.T) {
	alerts, sink := collectAlerts()
	d := NewDispatcher("me", constants.ROLE_STUDENT, sink)
	utr := "UTR123456"

	// proof submission publishes the unchanged status plus the prior
	// proof fields; the customer gets no alert at all
	dispatchOrderFrame(t, d, EventUpdate,
		OrderRecord{
			ID: "o1", UserId: "me", Status: constants.ORDER_ACCEPTED,
			Utr: &utr, UpdatedAt: time.Now(),
		},
		map[string]any{"status": constants.ORDER_ACCEPTED, "utr": "", "paymentScreenshotUrl": ""})

	assert.Empty(t, *alerts)
}

func TestPaymentVerifyDoesNotRefireProofAlert(t *testing.T) {
	alerts, sink := collectAlerts()
	d := NewDispatcher("owner", constants.ROLE_SHOPKEEPER, sink)
	utr := "UTR123456"

	// the verify update leaves the proof fields untouched, so old omits
	// them; the shop owner must not be asked to verify again
	dispatchOrderFrame(t, d, EventUpdate,
		OrderRecord{
			ID: "o1", UserId: "student", Status: constants.ORDER_ACCEPTED,
			PaymentStatus: constants.PAYMENT_PAID, Utr: &utr, UpdatedAt: time.Now(),
		},
		map[string]any{"status": constants.ORDER_ACCEPTED, "paymentStatus": constants.PAYMENT_UNPAID})

	assert.Empty(t, *alerts)
}

func TestPeerOrdersDoNotAlertCustomer(t *testing.T) {
	alerts, sink := collectAlerts()
	d := NewDispatcher("me", constants.ROLE_STUDENT, sink)

	dispatchOrderFrame(t, d, EventUpdate,
		OrderRecord{ID: "o1", UserId: "someone-else", Status: constants.ORDER_READY, UpdatedAt: time.Now()},
		map[string]any{"status": constants.ORDER_PREPARING})

	assert.Empty(t, *alerts)
}

func TestChatAlertPreviewAndSelfSkip(t *testing.T) {
	alerts, sink := collectAlerts()
	d := NewDispatcher("me", constants.ROLE_STUDENT, sink)

	long := strings.Repeat("a", 120)
	peerMsg, err := json.Marshal(MessageRecord{
		ID: "m1", OrderId: "o1", SenderUserId: "peer", Message: long, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(Frame{Table: "order_messages", Type: EventInsert, New: peerMsg}))

	require.Len(t, *alerts, 1)
	assert.Equal(t, SoundChat, (*alerts)[0].Sound)
	assert.Len(t, (*alerts)[0].Message, 80)

	// the same message again (feed after broadcast) stays silent
	require.NoError(t, d.Dispatch(Frame{Table: "order_messages", Type: EventInsert, New: peerMsg}))
	assert.Len(t, *alerts, 1)

	ownMsg, err := json.Marshal(MessageRecord{
		ID: "m2", OrderId: "o1", SenderUserId: "me", Message: "mine", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(Frame{Table: "order_messages", Type: EventInsert, New: ownMsg}))
	assert.Len(t, *alerts, 1)
}

func TestChatPreviewDoesNotSplitRunes(t *testing.T) {
	alerts, sink := collectAlerts()
	d := NewDispatcher("me", constants.ROLE_STUDENT, sink)

	msg, err := json.Marshal(MessageRecord{
		ID: "m1", OrderId: "o1", SenderUserId: "peer",
		Message: strings.Repeat("₹", 100), CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(Frame{Table: "order_messages", Type: EventInsert, New: msg}))

	require.Len(t, *alerts, 1)
	preview := (*alerts)[0].Message
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, 80, utf8.RuneCountInString(preview))
}

func TestMarkSeenSurvivesGenerationRotation(t *testing.T) {
	d := NewDispatcher("me", constants.ROLE_STUDENT, func(Alert) {})

	require.True(t, d.markSeen("event-a"))
	for i := 0; i < seenGenerationCap+100; i++ {
		d.markSeen(fmt.Sprintf("filler-%d", i))
	}

	// a redelivery right after the rotation must stay silent
	assert.False(t, d.markSeen("event-a"))
	assert.False(t, d.markSeen(fmt.Sprintf("filler-%d", seenGenerationCap+99)))
}
