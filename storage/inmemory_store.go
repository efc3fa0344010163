package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

const UpdateBufferSize = 255

var ErrKeyNotFound = errors.New("Key not found")

type InmemoryStore struct {
	mu     sync.RWMutex
	values []byte

	updateMu    sync.Mutex
	updateChans []chan *Update

	// stop willl be closed when Close() is called
	stop     chan struct{}
	stopOnce sync.Once

	log *zap.Logger
}

func NewInmemoryStore(log *zap.Logger) *InmemoryStore {
	if log == nil {
		log = zap.NewNop()
	}

	return &InmemoryStore{
		values:      []byte("{}"),
		stop:        make(chan struct{}),
		updateChans: make([]chan *Update, 0),
		log:         log,
	}
}

func (i *InmemoryStore) Close() error {
	i.stopOnce.Do(func() {
		close(i.stop)

		i.updateMu.Lock()
		defer i.updateMu.Unlock()

		for _, updateChan := range i.updateChans {
			close(updateChan)
		}
		i.updateChans = nil
	})

	return nil
}

// Set replaces the value at key. value is encoded as JSON.
func (i *InmemoryStore) Set(ctx context.Context, key []byte, value interface{}) error {
	i.mu.Lock()
	values, err := sjson.SetBytes(i.values, string(key), value)
	if err != nil {
		i.mu.Unlock()
		return err
	}
	i.values = values
	raw := []byte(gjson.GetBytes(i.values, string(key)).Raw)
	i.mu.Unlock()

	i.notify(&Update{Key: key, Value: raw})

	return nil
}

// Get returns the raw JSON at key.
func (i *InmemoryStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(key) == 0 {
		return append([]byte(nil), i.values...), nil
	}

	result := gjson.GetBytes(i.values, string(key))
	if !result.Exists() {
		return nil, ErrKeyNotFound
	}

	return []byte(result.Raw), nil
}

func (i *InmemoryStore) ListenToUpdates() <-chan *Update {
	i.updateMu.Lock()
	defer i.updateMu.Unlock()

	updateChan := make(chan *Update, UpdateBufferSize)
	if !i.isRunning() {
		close(updateChan)
		return updateChan
	}

	i.updateChans = append(i.updateChans, updateChan)

	return updateChan
}

// Unlisten stops the updates of a channel returned by ListenToUpdates and
// closes it.
func (i *InmemoryStore) Unlisten(updates <-chan *Update) {
	i.updateMu.Lock()
	defer i.updateMu.Unlock()

	for idx, updateChan := range i.updateChans {
		if updateChan == updates {
			close(updateChan)
			i.updateChans = append(i.updateChans[:idx], i.updateChans[idx+1:]...)
			return
		}
	}
}

// notify never blocks the writer, a listener that falls behind loses updates.
func (i *InmemoryStore) notify(update *Update) {
	if !i.isRunning() {
		return
	}

	i.updateMu.Lock()
	defer i.updateMu.Unlock()

	for _, updateChan := range i.updateChans {
		select {
		case updateChan <- update:
		default:
			i.log.Warn("Dropped store update, listener is not keeping up",
				zap.ByteString("key", update.Key))
		}
	}
}

// isRunning returns true if Close has not been called
func (i *InmemoryStore) isRunning() bool {
	select {
	case <-i.stop:
		return false

	default:
		return true
	}
}

var _ Store = (*InmemoryStore)(nil)
