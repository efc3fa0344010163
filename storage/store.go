package storage

import "context"

// Update is sent to listeners every time a document of the store changes.
type Update struct {
	Key   []byte
	Value []byte
}

// Store holds the director's published state as a single JSON document,
// addressed by gjson/sjson paths.
type Store interface {
	Set(ctx context.Context, key []byte, value interface{}) error
	Get(ctx context.Context, key []byte) ([]byte, error)

	ListenToUpdates() <-chan *Update
	Unlisten(updates <-chan *Update)

	Close() error
}
