package transport

import (
	"fmt"
	"net"
	"strconv"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/zap"
)

// Listen binds the local UDP socket the broadcasting session runs on.
func Listen(options Options) (net.PacketConn, error) {
	addr := net.JoinHostPort(options.Host, strconv.Itoa(options.Port))

	var (
		conn net.PacketConn
		err  error
	)

	if options.Reuseport {
		conn, err = reuseport.ListenPacket("udp", addr)
	} else {
		conn, err = net.ListenPacket("udp", addr)
	}

	if err != nil {
		return nil, fmt.Errorf("Failed to listen on %s: %w", addr, err)
	}

	if options.Log != nil {
		options.Log.Info("Listening for datagrams",
			zap.String("addr", conn.LocalAddr().String()),
			zap.Bool("reuseport", options.Reuseport))
	}

	return conn, nil
}
