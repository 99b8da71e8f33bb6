package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPICancelPendingConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/orders/o1/cancel", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"status":"error","message":"Order was already accepted","keyError":"CONFLICT_ERROR"}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "token")
	err := api.CancelPending(context.Background(), "o1")
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "already accepted")
}

func TestAPIErrorKeyMapping(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{400, `{"keyError":"VALIDATION_ERROR","message":"shop closed"}`, ErrValidation},
		{409, `{"keyError":"CONFLICT_ERROR"}`, ErrConflict},
		{403, `{"keyError":"AUTHORIZATION_ERROR"}`, ErrAuthorization},
		{503, `{"keyError":"TRANSIENT_ERROR"}`, ErrTransient},
		// no key: fall back to the status code
		{409, `{"message":"raced"}`, ErrConflict},
		{401, `{}`, ErrAuthorization},
		{500, `{}`, ErrTransient},
	}
	for _, tc := range cases {
		err := mapError(tc.status, []byte(tc.body))
		assert.ErrorIs(t, err, tc.want, "status %d body %s", tc.status, tc.body)
	}
}

func TestAPIFetchOrdersDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":"success","data":[{"id":"o1","status":"pending"},{"id":"o2","status":"ready"}]}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "token")
	rows, err := api.FetchOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "pending", rows[0].Status)
}

func TestAPISendMessageReturnsConfirmedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/o1", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"success","data":{"id":"m1","orderId":"o1","message":"hello"}}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, "token")
	msg, err := api.SendMessage(context.Background(), "o1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "hello", msg.Message)
}
