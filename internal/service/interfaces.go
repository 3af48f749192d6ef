package service

import (
	"context"

	"alfabeta/internal/models"
)

// StateStore is a key/value store for the persisted state blobs
type StateStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Describe() string
}

// batchStore is implemented by stores that can write several keys atomically
type batchStore interface {
	SaveAll(ctx context.Context, entries map[string][]byte) error
}

// EventPublisher receives game feedback events
type EventPublisher interface {
	Publish(event models.GameEvent)
}

// Pronouncer speaks tile text without blocking the caller
type Pronouncer interface {
	Pronounce(text string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(models.GameEvent) {}

type nopPronouncer struct{}

func (nopPronouncer) Pronounce(string) {}
