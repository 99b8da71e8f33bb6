package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"campus_canteen/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatStore struct {
	sendErr   error
	confirmed []MessageRecord
	broadcast []MessageRecord
	seq       int
}

func (f *fakeChatStore) SendMessage(ctx context.Context, orderId, body string) (MessageRecord, error) {
	if f.sendErr != nil {
		return MessageRecord{}, f.sendErr
	}
	f.seq++
	msg := MessageRecord{
		ID:           fmt.Sprintf("srv-%d", f.seq),
		OrderId:      orderId,
		SenderUserId: "me",
		SenderRole:   constants.ROLE_STUDENT,
		Message:      body,
		CreatedAt:    time.Now(),
	}
	f.confirmed = append(f.confirmed, msg)
	return msg, nil
}

func (f *fakeChatStore) BroadcastMessage(ctx context.Context, orderId string, msg MessageRecord) error {
	f.broadcast = append(f.broadcast, msg)
	return nil
}

func messageFrame(t *testing.T, eventType string, row MessageRecord) Frame {
	t.Helper()
	payload, err := json.Marshal(row)
	require.NoError(t, err)
	return Frame{Table: "order_messages", Type: eventType, New: payload}
}

func TestSendSwapsTempForConfirmed(t *testing.T) {
	store := &fakeChatStore{}
	conv := NewConversation("order-1", "me", store, store)

	confirmed, err := conv.Send(context.Background(), "hello", constants.ROLE_STUDENT)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(confirmed.ID, "srv-"))

	msgs := conv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, confirmed.ID, msgs[0].ID, "temp row must be gone")
	assert.Equal(t, "hello", msgs[0].Message)

	require.Len(t, store.broadcast, 1)
	assert.Equal(t, confirmed.ID, store.broadcast[0].ID)
}

func TestSendFailureRollsBackOptimisticRow(t *testing.T) {
	store := &fakeChatStore{sendErr: ErrTransient}
	conv := NewConversation("order-1", "me", store, store)

	_, err := conv.Send(context.Background(), "hello", constants.ROLE_STUDENT)
	require.ErrorIs(t, err, ErrTransient)
	assert.Empty(t, conv.Messages())
	assert.Empty(t, store.broadcast)
}

func TestSendRejectsEmptyAndOversized(t *testing.T) {
	conv := NewConversation("order-1", "me", &fakeChatStore{}, nil)

	_, err := conv.Send(context.Background(), "   ", constants.ROLE_STUDENT)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = conv.Send(context.Background(), strings.Repeat("x", constants.MAX_MESSAGE_LENGTH+1), constants.ROLE_STUDENT)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, conv.Messages())
}

func TestOwnEchoIsNotDuplicated(t *testing.T) {
	store := &fakeChatStore{}
	conv := NewConversation("order-1", "me", store, store)

	confirmed, err := conv.Send(context.Background(), "hello", constants.ROLE_STUDENT)
	require.NoError(t, err)

	// our message comes back on both delivery paths
	require.NoError(t, conv.Apply(messageFrame(t, EventInsert, confirmed)))
	require.NoError(t, conv.Apply(messageFrame(t, EventInsert, confirmed)))

	msgs := conv.Messages()
	require.Len(t, msgs, 1, "message must appear exactly once")
	assert.Equal(t, confirmed.ID, msgs[0].ID)
}

func TestPeerMessagesDedupeById(t *testing.T) {
	conv := NewConversation("order-1", "me", &fakeChatStore{}, nil)
	peer := MessageRecord{
		ID: "p1", OrderId: "order-1", SenderUserId: "peer",
		SenderRole: constants.ROLE_SHOPKEEPER, Message: "5 minutes", CreatedAt: time.Now(),
	}

	// broadcast lands first, feed catches up later
	require.NoError(t, conv.Apply(messageFrame(t, EventInsert, peer)))
	require.NoError(t, conv.Apply(messageFrame(t, EventInsert, peer)))

	msgs := conv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "5 minutes", msgs[0].Message)
}

func TestForeignOrderFramesAreDropped(t *testing.T) {
	conv := NewConversation("order-1", "me", &fakeChatStore{}, nil)
	stray := MessageRecord{ID: "x1", OrderId: "order-2", SenderUserId: "peer", Message: "wrong room"}

	require.NoError(t, conv.Apply(messageFrame(t, EventInsert, stray)))
	assert.Empty(t, conv.Messages())
}

func TestMessagesSortByTimestampNotArrival(t *testing.T) {
	conv := NewConversation("order-1", "me", &fakeChatStore{}, nil)
	base := time.Now()

	late := MessageRecord{ID: "m2", OrderId: "order-1", SenderUserId: "peer", Message: "second", CreatedAt: base.Add(time.Minute)}
	early := MessageRecord{ID: "m1", OrderId: "order-1", SenderUserId: "peer", Message: "first", CreatedAt: base}

	// network delivers them out of order
	require.NoError(t, conv.Apply(messageFrame(t, EventInsert, late)))
	require.NoError(t, conv.Apply(messageFrame(t, EventInsert, early)))

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Message)
	assert.Equal(t, "second", msgs[1].Message)
}

func TestBaselineMergesWithOptimisticState(t *testing.T) {
	store := &fakeChatStore{}
	conv := NewConversation("order-1", "me", store, store)

	confirmed, err := conv.Send(context.Background(), "hello", constants.ROLE_STUDENT)
	require.NoError(t, err)

	rows, err := json.Marshal([]MessageRecord{
		{ID: "p1", OrderId: "order-1", SenderUserId: "peer", Message: "hi", CreatedAt: confirmed.CreatedAt.Add(-time.Minute)},
		confirmed,
	})
	require.NoError(t, err)
	require.NoError(t, conv.Apply(Frame{Table: "order_messages", Type: EventBaseline, Rows: rows}))

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Message)
	assert.Equal(t, "hello", msgs[1].Message)
}
