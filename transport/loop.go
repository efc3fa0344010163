package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/racedirector/protocol"
)

// Session is the receiving half of a broadcasting session, see client.Conn.
type Session interface {
	ListenStep() (protocol.Inbound, error)
}

type Handler interface {
	Handle(result protocol.Inbound)
}

type HandlerFunc func(result protocol.Inbound)

func (f HandlerFunc) Handle(result protocol.Inbound) {
	f(result)
}

// Loop pumps a Session, handing every result to its handlers in order. It is
// the only goroutine that calls ListenStep.
type Loop struct {
	session  Session
	socket   io.Closer
	handlers []Handler

	closeOnce sync.Once
	closeErr  error

	metrics *Metrics
	log     *zap.Logger
}

// NewLoop creates a loop for session. socket is the socket the session
// receives on, it is closed to unblock the session when the loop stops.
func NewLoop(session Session, socket io.Closer, metrics *Metrics, log *zap.Logger, handlers ...Handler) *Loop {
	return &Loop{
		session:  session,
		socket:   socket,
		handlers: handlers,
		metrics:  metrics,
		log:      log,
	}
}

// Run receives until ctx is cancelled or receiving fails. A cancelled ctx is
// a clean stop and returns nil. Datagrams that cannot be decoded are logged
// and skipped.
func (l *Loop) Run(ctx context.Context) (err error) {
	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			l.log.Info("Context cancelled, closing socket")
			l.close()

		case <-stopped:
		}
	}()

	defer func() {
		err = multierr.Append(err, l.close())
	}()

	for {
		result, err := l.session.ListenStep()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			if errors.Is(err, protocol.ErrMalformedMessage) {
				l.metrics.observeMalformed()
				l.log.Warn("Dropping malformed datagram", zap.Error(err))
				continue
			}

			l.metrics.observeReceiveFailure()
			return fmt.Errorf("Receive loop stopped: %w", err)
		}

		l.metrics.observeResult(result)

		for _, handler := range l.handlers {
			handler.Handle(result)
		}
	}
}

func (l *Loop) close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.socket.Close()
	})

	return l.closeErr
}
