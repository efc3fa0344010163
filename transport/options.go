package transport

import (
	"go.uber.org/zap"
)

type Options struct {
	// Host to listen on
	Host string

	// Port to listen on
	Port int

	// Reuseport controls setting SO_REUSEPORT, so a replacement process can
	// bind the same port before this one lets go of it
	Reuseport bool

	Log *zap.Logger
}
