package pubsub

import (
	"fmt"
	"time"

	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/nats-io/nats.go"
)

// NATSPubSub connects to an external NATS server with JetStream enabled.
type NATSPubSub struct {
	*jetStream
}

// NewNATSPubSub dials natsURL and ensures the draft event stream exists.
// Events are kept on disk for a day so late joiners can replay a session.
func NewNATSPubSub(natsURL, subject string) (*NATSPubSub, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("auction-draft"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	b, err := newJetStream(nc, DefaultStream, nats.StreamConfig{
		Subjects: []string{subject},
		Storage:  nats.FileStorage,
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, err
	}
	logger.Info("Connected to NATS", "url", natsURL, "subject", subject)
	return &NATSPubSub{jetStream: b}, nil
}

// Close drops the connection and closes every local channel.
func (p *NATSPubSub) Close() {
	p.close()
}
