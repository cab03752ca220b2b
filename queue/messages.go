package queue

import (
	"encoding/json"
	"time"
)

// PaymentNotificationMessage gateway notification waiting for verification.
// Carries only the payment id; the consumer asks the gateway for the rest.
type PaymentNotificationMessage struct {
	PaymentID string    `json:"paymentId"`
	Topic     string    `json:"topic"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPaymentNotificationMessage creates a message stamped with the current time
func NewPaymentNotificationMessage(paymentID, topic, requestID string) *PaymentNotificationMessage {
	return &PaymentNotificationMessage{
		PaymentID: paymentID,
		Topic:     topic,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *PaymentNotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentNotificationMessageFromJSON creates a message from JSON bytes
func PaymentNotificationMessageFromJSON(data []byte) (*PaymentNotificationMessage, error) {
	var msg PaymentNotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
