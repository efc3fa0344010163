package client

import (
	"time"
)

const (
	DefaultProtocolVersion = 4
	DefaultUpdateInterval  = 250 * time.Millisecond
	DefaultResyncInterval  = time.Second
)

type Config struct {
	// ProtocolVersion of the broadcasting protocol to register with
	ProtocolVersion uint8

	// DisplayName is how this client shows up on the server
	DisplayName string

	ConnectionPassword string
	CommandPassword    string

	// UpdateInterval is how often the server should push realtime updates
	UpdateInterval time.Duration

	// Destination is the host:port of the broadcasting server
	Destination string

	// ResyncInterval bounds how often the entry list is requested again when
	// a realtime car update does not match the cached roster.
	ResyncInterval time.Duration

	// Trace will log every datagram at debug level. This is only useful in local debugging
	Trace bool
}

func (c Config) withDefaults() Config {
	if c.ProtocolVersion == 0 {
		c.ProtocolVersion = DefaultProtocolVersion
	}

	if c.UpdateInterval <= 0 {
		c.UpdateInterval = DefaultUpdateInterval
	}

	if c.ResyncInterval <= 0 {
		c.ResyncInterval = DefaultResyncInterval
	}

	return c
}
