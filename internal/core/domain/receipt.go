package domain

import "time"

// DeliveryReceipt records one attempt to send an item to one channel.
// Receipts are append-only.
type DeliveryReceipt struct {
	ItemID            string
	Channel           string
	Sent              bool
	ExternalMessageID string
	Error             string
	AttemptedAt       time.Time
}
