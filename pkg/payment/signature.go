package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var ErrInvalidSignature = errors.New("invalid payment signature")

// Sign hex kodlu HMAC-SHA256 üretir.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// PaymentSignature gateway'in checkout callback'inde gönderdiği imza: HMAC(orderId|paymentId).
func PaymentSignature(orderID, paymentID, secret string) string {
	return Sign(secret, []byte(orderID+"|"+paymentID))
}

func VerifyPaymentSignature(orderID, paymentID, signature, secret string) error {
	if secret == "" || orderID == "" || paymentID == "" {
		return ErrInvalidSignature
	}
	return compare(PaymentSignature(orderID, paymentID, secret), signature)
}

// VerifyWebhookSignature ham webhook gövdesi üzerindeki imzayı doğrular.
func VerifyWebhookSignature(body []byte, signature, secret string) error {
	if secret == "" {
		return ErrInvalidSignature
	}
	return compare(Sign(secret, body), signature)
}

func compare(expected, got string) error {
	got = strings.ToLower(strings.TrimSpace(got))
	if got == "" || !hmac.Equal([]byte(expected), []byte(got)) {
		return ErrInvalidSignature
	}
	return nil
}
