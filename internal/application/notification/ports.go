// Package notification runs the owner reminder passes and the daily offers broadcast.
package notification

import "context"

// MessageSender delivers a text message. An empty to list means the transport's
// default destination.
type MessageSender interface {
	SendText(ctx context.Context, to []string, body string) error
}

// MediaSender delivers an image message
type MediaSender interface {
	SendMedia(ctx context.Context, to []string, title, caption, dataURI string) error
}

// BlobStore reads stored objects
type BlobStore interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
}

// ImageTranscoder turns raw image bytes into a compressed JPEG data URI
type ImageTranscoder interface {
	ToDataURI(data []byte) (string, error)
}

// Reminder kinds, used in logs and metrics
const (
	KindFinance = "finance"
	KindDueSoon = "due_soon"
	KindOverdue = "overdue"
	KindOffer   = "offer"
)

// DeliveryObserver is told about every delivery attempt. err is nil on success.
type DeliveryObserver interface {
	ObserveDelivery(ctx context.Context, kind string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveDelivery(context.Context, string, error) {}
