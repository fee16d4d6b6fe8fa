package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	var got OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_9A33XWu170gUtm","entity":"order","amount":50000,"currency":"INR","receipt":"rcpt_1","status":"created","created_at":1700000000}`))
	}))
	defer srv.Close()

	c := &Client{KeyID: "rzp_test", KeySecret: "secret", APIBaseURL: srv.URL + "/v1", HTTPClient: srv.Client()}
	order, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 50000, Currency: "INR", Receipt: "rcpt_1"})
	require.NoError(t, err)

	assert.Equal(t, int64(50000), got.Amount)
	assert.Equal(t, "INR", got.Currency)
	assert.Equal(t, "rcpt_1", got.Receipt)
	assert.Equal(t, "order_9A33XWu170gUtm", order.ID)
	assert.Equal(t, "created", order.Status)
}

func TestCreateOrder_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Order amount less than minimum amount allowed"}}`))
	}))
	defer srv.Close()

	c := &Client{KeyID: "k", KeySecret: "s", APIBaseURL: srv.URL}
	_, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 1, Currency: "INR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD_REQUEST_ERROR")
}

func TestCreateOrder_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"entity":"order"}`))
	}))
	defer srv.Close()

	c := &Client{KeyID: "k", KeySecret: "s", APIBaseURL: srv.URL}
	_, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
	assert.Error(t, err)
}

func TestCreateOrder_NotConfigured(t *testing.T) {
	c := &Client{}
	_, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
