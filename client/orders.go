package client

import (
	"campus_canteen/constants"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"
)

const (
	// StalePendingAge is how long an order may sit in pending before the
	// sweep cancels it.
	StalePendingAge = 5 * time.Hour

	// FallbackPollInterval is the coarse self-heal refetch cadence. Feed
	// events make most ticks no-ops.
	FallbackPollInterval = 15 * time.Second
)

// OrderFetcher re-reads the authoritative order rows for the scope.
type OrderFetcher interface {
	FetchOrders(ctx context.Context) ([]OrderRecord, error)
}

// OrderCanceller performs the conditional pending-only cancel. It must
// return ErrConflict when the order was no longer pending at write time.
type OrderCanceller interface {
	CancelPending(ctx context.Context, orderId string) error
}

// OrderList is the deduplicated local order view for one scope (a
// customer's orders or a shop's orders). Feed frames, broadcast frames
// and fallback polls all funnel into it; applying the same event twice
// is a no-op.
type OrderList struct {
	mu        sync.Mutex
	rows      map[string]OrderRecord
	gen       int
	fetcher   OrderFetcher
	canceller OrderCanceller
	cancel    context.CancelFunc
	pollDone  chan struct{}
}

func NewOrderList(fetcher OrderFetcher, canceller OrderCanceller) *OrderList {
	return &OrderList{
		rows:      make(map[string]OrderRecord),
		fetcher:   fetcher,
		canceller: canceller,
	}
}

// Refresh replaces the local view with an authoritative fetch. A
// response that lands after the scope was torn down or refreshed again
// is discarded rather than merged.
func (l *OrderList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	gen := l.gen
	l.mu.Unlock()

	rows, err := l.fetcher.FetchOrders(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen {
		return nil // stale scope, drop the response
	}
	l.rows = make(map[string]OrderRecord, len(rows))
	for _, r := range rows {
		l.rows[r.ID] = r
	}
	return nil
}

// Apply merges one feed frame into the local view. Inserts dedupe by id,
// updates overwrite unless the frame is older than what we hold, deletes
// remove by id.
func (l *OrderList) Apply(f Frame) error {
	if f.Table != "orders" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	switch f.Type {
	case EventBaseline:
		var rows []OrderRecord
		if err := json.Unmarshal(f.Rows, &rows); err != nil {
			return err
		}
		l.rows = make(map[string]OrderRecord, len(rows))
		for _, r := range rows {
			l.rows[r.ID] = r
		}
	case EventInsert, EventUpdate:
		var row OrderRecord
		if err := json.Unmarshal(f.New, &row); err != nil {
			return err
		}
		if held, ok := l.rows[row.ID]; ok && held.UpdatedAt.After(row.UpdatedAt) {
			return nil // late delivery of an already-superseded change
		}
		l.rows[row.ID] = row
	case EventDelete:
		var row OrderRecord
		if err := json.Unmarshal(f.New, &row); err != nil {
			return err
		}
		delete(l.rows, row.ID)
	}
	return nil
}

// Orders returns the view newest-first by creation time. Render order
// never depends on arrival order.
func (l *OrderList) Orders() []OrderRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]OrderRecord, 0, len(l.rows))
	for _, r := range l.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns one order by id.
func (l *OrderList) Get(orderId string) (OrderRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rows[orderId]
	return r, ok
}

// StartPolling runs the fallback refetch loop until Close or ctx
// cancellation. It is the correctness backstop for dropped feed events.
func (l *OrderList) StartPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = FallbackPollInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	l.mu.Lock()
	if l.cancel != nil {
		// at most one poll loop per list, retire the previous one
		l.cancel()
	}
	l.cancel = cancel
	l.pollDone = done
	l.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = l.Refresh(ctx) // read-path failures degrade to the stale view
			}
		}
	}()
}

// Close tears the scope down: the poll loop stops and any in-flight
// Refresh response is discarded instead of merged.
func (l *OrderList) Close() {
	l.mu.Lock()
	l.gen++
	cancel := l.cancel
	l.cancel = nil
	l.rows = make(map[string]OrderRecord)
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SweepStale cancels every held order still pending past the staleness
// threshold, via the same conditional cancel a user would issue. A
// conflict means a peer advanced the order first; the feed or next poll
// will carry the winning state, so it is not an error here. Returns the
// ids it cancelled.
func (l *OrderList) SweepStale(ctx context.Context, now time.Time) ([]string, error) {
	l.mu.Lock()
	var due []string
	for id, r := range l.rows {
		if r.Status == constants.ORDER_PENDING && now.Sub(r.CreatedAt) > StalePendingAge {
			due = append(due, id)
		}
	}
	l.mu.Unlock()

	var cancelled []string
	for _, id := range due {
		err := l.canceller.CancelPending(ctx, id)
		switch {
		case err == nil:
			cancelled = append(cancelled, id)
			l.mu.Lock()
			if r, ok := l.rows[id]; ok {
				r.Status = constants.ORDER_CANCELLED
				l.rows[id] = r
			}
			l.mu.Unlock()
		case errors.Is(err, ErrConflict):
			// lost the race, authoritative state arrives on the feed
		default:
			return cancelled, err
		}
	}
	return cancelled, nil
}
