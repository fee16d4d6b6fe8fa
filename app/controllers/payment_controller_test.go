package controllers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/EventDesk/internal/pkg/payment"
)

func newPaymentApp(f *fakePayments) *fiber.App {
	app := fiber.New()
	pc := NewPaymentController(f)
	app.Post("/orders", pc.HandleCreateOrder)
	app.Post("/verify", pc.HandleVerify)
	return app
}

func TestHandleCreateOrder_Created(t *testing.T) {
	f := &fakePayments{createRes: &payment.CreateOrderResult{OrderID: "order_9", Currency: "INR", AmountMinor: 50000, Receipt: "rcpt_1"}}
	app := newPaymentApp(f)

	req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"amount":500,"currency":"inr","user_id":1,"event_id":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "order_9", body["order_id"])
	assert.Equal(t, float64(50000), body["amount"])
	assert.Equal(t, 500.0, f.createIn.Amount)
	assert.Equal(t, uint(2), f.createIn.EventID)
}

func TestHandleCreateOrder_ErrorMapping(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: amount must be > 0", payment.ErrValidation): fiber.StatusBadRequest,
		fmt.Errorf("%w: gateway timeout", payment.ErrUpstream):      fiber.StatusBadGateway,
	}
	for svcErr, status := range cases {
		app := newPaymentApp(&fakePayments{err: svcErr})
		req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"amount":0}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, payment.Code(svcErr), body["error"])
		assert.NotEmpty(t, body["message"])
	}
}

func TestHandleCreateOrder_MalformedBody(t *testing.T) {
	app := newPaymentApp(&fakePayments{})
	req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"amount":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleVerify_PassesGatewayFields(t *testing.T) {
	f := &fakePayments{verifyRes: &payment.VerifyResult{OrderID: "o1", Status: "SUCCESS", NotificationStatus: "SUCCESS_SENT"}}
	app := newPaymentApp(f)

	req := httptest.NewRequest("POST", "/verify", strings.NewReader(
		`{"razorpay_order_id":"o1","razorpay_payment_id":"p1","razorpay_signature":"abc","status":"SUCCESS"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, payment.VerifyInput{OrderID: "o1", PaymentID: "p1", Signature: "abc", Status: "SUCCESS"}, f.verifyIn)
	assert.Contains(t, readBody(t, resp), `"notification_status":"SUCCESS_SENT"`)
}

func TestHandleVerify_SignatureMismatch(t *testing.T) {
	app := newPaymentApp(&fakePayments{err: payment.ErrSignatureMismatch})
	req := httptest.NewRequest("POST", "/verify", strings.NewReader(`{"razorpay_order_id":"o1","status":"SUCCESS"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"error":"signature_mismatch"`)
}

func TestHandleVerify_NotFound(t *testing.T) {
	app := newPaymentApp(&fakePayments{err: fmt.Errorf("%w: order missing", payment.ErrNotFound)})
	req := httptest.NewRequest("POST", "/verify", strings.NewReader(`{"razorpay_order_id":"missing","status":"FAILED"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
