package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"campus_canteen/constants"
)

// API talks to the backend over HTTP and satisfies the fetch/mutate
// interfaces the sync layer consumes. Error responses carry a keyError
// field that maps onto the typed sentinel errors.
type API struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{BaseURL: baseURL, Token: token, HTTP: http.DefaultClient}
}

type apiError struct {
	Message  string `json:"message"`
	KeyError string `json:"keyError"`
}

// mapError turns a backend error body into the matching sentinel so
// callers can branch with errors.Is instead of parsing messages.
func mapError(status int, body []byte) error {
	var e apiError
	_ = json.Unmarshal(body, &e)
	base := ErrTransient
	switch e.KeyError {
	case constants.KEY_VALIDATION_ERROR:
		base = ErrValidation
	case constants.KEY_CONFLICT_ERROR:
		base = ErrConflict
	case constants.KEY_AUTHORIZATION_ERROR:
		base = ErrAuthorization
	case constants.KEY_TRANSIENT_ERROR:
		base = ErrTransient
	default:
		switch status {
		case http.StatusBadRequest:
			base = ErrValidation
		case http.StatusConflict:
			base = ErrConflict
		case http.StatusForbidden, http.StatusUnauthorized:
			base = ErrAuthorization
		}
	}
	if e.Message == "" {
		return fmt.Errorf("%w: http %d", base, status)
	}
	return fmt.Errorf("%w: %s", base, e.Message)
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if resp.StatusCode >= 400 {
		return mapError(resp.StatusCode, raw)
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func (a *API) getInto(ctx context.Context, path string, out any) error {
	var env dataEnvelope
	if err := a.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return err
	}
	return json.Unmarshal(env.Data, out)
}

// FetchOrders loads the caller's own orders.
func (a *API) FetchOrders(ctx context.Context) ([]OrderRecord, error) {
	var rows []OrderRecord
	if err := a.getInto(ctx, "/api/v1/orders", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchShopOrders loads the caller's shop's orders.
func (a *API) FetchShopOrders(ctx context.Context) ([]OrderRecord, error) {
	var rows []OrderRecord
	if err := a.getInto(ctx, "/api/v1/orders/shop", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CancelPending issues the pending-only conditional cancel; ErrConflict
// means the shop moved the order first.
func (a *API) CancelPending(ctx context.Context, orderId string) error {
	return a.do(ctx, http.MethodPost, "/api/v1/orders/"+orderId+"/cancel", nil, nil)
}

// PlaceOrder creates a server-priced order and returns its id.
func (a *API) PlaceOrder(ctx context.Context, shopId, notes string, items []OrderLine) (string, error) {
	in := map[string]any{"shopId": shopId, "notes": notes, "items": items}
	var env dataEnvelope
	if err := a.do(ctx, http.MethodPost, "/api/v1/orders", in, &env); err != nil {
		return "", err
	}
	var created struct {
		OrderId string `json:"orderId"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		return "", err
	}
	return created.OrderId, nil
}

// OrderLine is one requested item; the backend ignores any client-held
// price and re-prices from the live menu.
type OrderLine struct {
	MenuItemId string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// UpdateStatus advances an order along the fulfillment graph.
func (a *API) UpdateStatus(ctx context.Context, orderId, status string) error {
	return a.do(ctx, http.MethodPatch, "/api/v1/orders/"+orderId+"/status",
		map[string]string{"status": status}, nil)
}

// UpdatePaymentStatus flips the payment flag to paid.
func (a *API) UpdatePaymentStatus(ctx context.Context, orderId string) error {
	return a.do(ctx, http.MethodPatch, "/api/v1/orders/"+orderId+"/payment",
		map[string]string{"paymentStatus": constants.PAYMENT_PAID}, nil)
}

// SendMessage performs the durable chat write and returns the confirmed
// row.
func (a *API) SendMessage(ctx context.Context, orderId, body string) (MessageRecord, error) {
	var env dataEnvelope
	err := a.do(ctx, http.MethodPost, "/api/v1/chat/"+orderId,
		map[string]string{"message": body}, &env)
	if err != nil {
		return MessageRecord{}, err
	}
	var row MessageRecord
	if err := json.Unmarshal(env.Data, &row); err != nil {
		return MessageRecord{}, err
	}
	return row, nil
}

// FetchMessages loads the full chat for an order, oldest first.
func (a *API) FetchMessages(ctx context.Context, orderId string) ([]MessageRecord, error) {
	var rows []MessageRecord
	if err := a.getInto(ctx, "/api/v1/chat/"+orderId, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
