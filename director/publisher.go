package director

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/luma/racedirector/protocol"
)

// NATSConn is the part of *nats.Conn the Publisher needs.
type NATSConn interface {
	Publish(subject string, data []byte) error
}

// Publisher forwards broadcasting events and session updates to NATS as
// JSON, under <prefix>.event and <prefix>.session.
type Publisher struct {
	conn   NATSConn
	prefix string
	log    *zap.Logger
}

func NewPublisher(conn NATSConn, prefix string, log *zap.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		prefix: prefix,
		log:    log,
	}
}

// DialNATS connects to the NATS server at url, reconnecting forever.
func DialNATS(url string, log *zap.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("racedirector"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("Disconnected from NATS", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("Reconnected to NATS", zap.String("url", c.ConnectedUrl()))
		}),
	)
}

func (p *Publisher) EventSubject() string {
	return p.prefix + ".event"
}

func (p *Publisher) SessionSubject() string {
	return p.prefix + ".session"
}

func (p *Publisher) Handle(result protocol.Inbound) {
	switch r := result.(type) {
	case protocol.BroadcastingEvent:
		p.publish(p.EventSubject(), r)

	case protocol.RealtimeSessionUpdate:
		p.publish(p.SessionSubject(), r)
	}
}

func (p *Publisher) publish(subject string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		p.log.Warn("Failed to encode message", zap.String("subject", subject), zap.Error(err))
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Warn("Failed to publish message", zap.String("subject", subject), zap.Error(err))
	}
}
