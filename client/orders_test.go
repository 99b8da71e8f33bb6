package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"campus_canteen/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderStore struct {
	rows      []OrderRecord
	fetchErr  error
	onFetch   func()
	cancelErr map[string]error
	cancelled []string
}

func (f *fakeOrderStore) FetchOrders(ctx context.Context) ([]OrderRecord, error) {
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.rows, nil
}

func (f *fakeOrderStore) CancelPending(ctx context.Context, orderId string) error {
	if err := f.cancelErr[orderId]; err != nil {
		return err
	}
	f.cancelled = append(f.cancelled, orderId)
	return nil
}

func orderFrame(t *testing.T, eventType string, row OrderRecord) Frame {
	t.Helper()
	payload, err := json.Marshal(row)
	require.NoError(t, err)
	return Frame{Table: "orders", Type: eventType, New: payload}
}

func TestOrderListApplyIsIdempotent(t *testing.T) {
	list := NewOrderList(&fakeOrderStore{}, &fakeOrderStore{})

	row := OrderRecord{ID: "o1", Status: constants.ORDER_PENDING, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	frame := orderFrame(t, EventInsert, row)

	require.NoError(t, list.Apply(frame))
	require.NoError(t, list.Apply(frame)) // feed + fallback poll overlap

	orders := list.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)
}

func TestOrderListUpdateAndDelete(t *testing.T) {
	list := NewOrderList(&fakeOrderStore{}, &fakeOrderStore{})
	now := time.Now()

	require.NoError(t, list.Apply(orderFrame(t, EventInsert,
		OrderRecord{ID: "o1", Status: constants.ORDER_PENDING, CreatedAt: now, UpdatedAt: now})))

	require.NoError(t, list.Apply(orderFrame(t, EventUpdate,
		OrderRecord{ID: "o1", Status: constants.ORDER_ACCEPTED, CreatedAt: now, UpdatedAt: now.Add(time.Second)})))
	got, ok := list.Get("o1")
	require.True(t, ok)
	assert.Equal(t, constants.ORDER_ACCEPTED, got.Status)

	// a late replay of the older state must not regress the row
	require.NoError(t, list.Apply(orderFrame(t, EventUpdate,
		OrderRecord{ID: "o1", Status: constants.ORDER_PENDING, CreatedAt: now, UpdatedAt: now})))
	got, _ = list.Get("o1")
	assert.Equal(t, constants.ORDER_ACCEPTED, got.Status)

	require.NoError(t, list.Apply(orderFrame(t, EventDelete, OrderRecord{ID: "o1"})))
	_, ok = list.Get("o1")
	assert.False(t, ok)
}

func TestOrderListSortsNewestFirst(t *testing.T) {
	list := NewOrderList(&fakeOrderStore{}, &fakeOrderStore{})
	base := time.Now()

	// arrival order is oldest-first on purpose
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, list.Apply(orderFrame(t, EventInsert,
			OrderRecord{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)})))
	}

	orders := list.Orders()
	require.Len(t, orders, 3)
	assert.Equal(t, "new", orders[0].ID)
	assert.Equal(t, "mid", orders[1].ID)
	assert.Equal(t, "old", orders[2].ID)
}

func TestOrderListRefreshReplacesView(t *testing.T) {
	store := &fakeOrderStore{rows: []OrderRecord{{ID: "o1"}, {ID: "o2"}}}
	list := NewOrderList(store, store)

	require.NoError(t, list.Refresh(context.Background()))
	assert.Len(t, list.Orders(), 2)

	// row gone server-side, poll must not leave a ghost
	store.rows = []OrderRecord{{ID: "o2"}}
	require.NoError(t, list.Refresh(context.Background()))
	orders := list.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "o2", orders[0].ID)
}

func TestOrderListClosedScopeDropsResponses(t *testing.T) {
	store := &fakeOrderStore{rows: []OrderRecord{{ID: "o1"}}}
	list := NewOrderList(store, store)

	// the scope is torn down while the fetch is in flight; the late
	// response must be dropped, not merged
	store.onFetch = list.Close
	require.NoError(t, list.Refresh(context.Background()))
	assert.Empty(t, list.Orders())
}

func TestStartPollingRetiresPreviousLoop(t *testing.T) {
	store := &fakeOrderStore{}
	list := NewOrderList(store, store)

	list.StartPolling(context.Background(), time.Hour)
	list.mu.Lock()
	first := list.pollDone
	list.mu.Unlock()

	// rescoping the poll must stop the earlier goroutine, not orphan it
	list.StartPolling(context.Background(), time.Hour)
	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("previous poll loop is still running")
	}

	list.Close()
	list.mu.Lock()
	second := list.pollDone
	list.mu.Unlock()
	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop survived Close")
	}
}

func TestSweepStaleCancelsOldPending(t *testing.T) {
	store := &fakeOrderStore{cancelErr: map[string]error{}}
	list := NewOrderList(store, store)
	now := time.Now()

	stale := OrderRecord{ID: "stale", Status: constants.ORDER_PENDING, CreatedAt: now.Add(-6 * time.Hour)}
	fresh := OrderRecord{ID: "fresh", Status: constants.ORDER_PENDING, CreatedAt: now.Add(-time.Hour)}
	accepted := OrderRecord{ID: "done", Status: constants.ORDER_ACCEPTED, CreatedAt: now.Add(-8 * time.Hour)}
	for _, r := range []OrderRecord{stale, fresh, accepted} {
		require.NoError(t, list.Apply(orderFrame(t, EventInsert, r)))
	}

	cancelled, err := list.SweepStale(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, cancelled)
	assert.Equal(t, []string{"stale"}, store.cancelled)

	got, _ := list.Get("stale")
	assert.Equal(t, constants.ORDER_CANCELLED, got.Status)
	got, _ = list.Get("fresh")
	assert.Equal(t, constants.ORDER_PENDING, got.Status)
}

func TestSweepStaleSwallowsConflicts(t *testing.T) {
	store := &fakeOrderStore{cancelErr: map[string]error{"stale": ErrConflict}}
	list := NewOrderList(store, store)
	now := time.Now()

	require.NoError(t, list.Apply(orderFrame(t, EventInsert,
		OrderRecord{ID: "stale", Status: constants.ORDER_PENDING, CreatedAt: now.Add(-6 * time.Hour)})))

	// the shop accepted first; the sweep loses the race quietly
	cancelled, err := list.SweepStale(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, cancelled)

	got, _ := list.Get("stale")
	assert.Equal(t, constants.ORDER_PENDING, got.Status, "authoritative state arrives via the feed, not the sweep")
}

func TestSweepStaleSurfacesOtherErrors(t *testing.T) {
	boom := errors.New("store down")
	store := &fakeOrderStore{cancelErr: map[string]error{"stale": boom}}
	list := NewOrderList(store, store)
	now := time.Now()

	require.NoError(t, list.Apply(orderFrame(t, EventInsert,
		OrderRecord{ID: "stale", Status: constants.ORDER_PENDING, CreatedAt: now.Add(-6 * time.Hour)})))

	_, err := list.SweepStale(context.Background(), now)
	require.ErrorIs(t, err, boom)
}

func TestOrderListBaselineFrame(t *testing.T) {
	list := NewOrderList(&fakeOrderStore{}, &fakeOrderStore{})
	require.NoError(t, list.Apply(orderFrame(t, EventInsert, OrderRecord{ID: "ghost"})))

	rows, err := json.Marshal([]OrderRecord{{ID: "o1"}, {ID: "o2"}})
	require.NoError(t, err)
	require.NoError(t, list.Apply(Frame{Table: "orders", Type: EventBaseline, Rows: rows}))

	assert.Len(t, list.Orders(), 2)
	_, ok := list.Get("ghost")
	assert.False(t, ok)
}
