package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CheckoutSignature returns the hex HMAC-SHA256 of "order_id|payment_id".
func CheckoutSignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCheckoutSignature compares the provided signature with the expected
// one for exact equality. An empty secret or signature never verifies.
func VerifyCheckoutSignature(orderID, paymentID, signature, secret string) bool {
	if secret == "" || strings.TrimSpace(signature) == "" {
		return false
	}
	expected := CheckoutSignature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
