package transport_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/luma/racedirector/client"
	"github.com/luma/racedirector/internal/protocoltest"
	"github.com/luma/racedirector/protocol"
	"github.com/luma/racedirector/transport"
)

type step struct {
	result protocol.Inbound
	err    error
}

// scriptedSession replays its steps, then blocks until the socket is closed.
type scriptedSession struct {
	steps  chan step
	closed chan struct{}
	once   sync.Once
}

func newScriptedSession(steps ...step) *scriptedSession {
	s := &scriptedSession{
		steps:  make(chan step, len(steps)),
		closed: make(chan struct{}),
	}

	for _, st := range steps {
		s.steps <- st
	}

	return s
}

func (s *scriptedSession) ListenStep() (protocol.Inbound, error) {
	select {
	case st := <-s.steps:
		return st.result, st.err
	default:
	}

	<-s.closed
	return nil, errors.New("use of closed network connection")
}

func (s *scriptedSession) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func counterText(name, help string, value int) string {
	return fmt.Sprintf("# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, value)
}

var _ = Describe("transport", func() {
	Describe("Listen()", func() {
		It("binds a UDP socket", func() {
			conn, err := transport.Listen(transport.Options{Host: "127.0.0.1", Port: 0, Reuseport: true})
			Expect(err).To(Succeed())
			defer conn.Close()

			Expect(conn.LocalAddr().Network()).To(Equal("udp"))
		})

		It("fails on an address it cannot bind", func() {
			_, err := transport.Listen(transport.Options{Host: "127.0.0.1", Port: -1})
			Expect(err).ToNot(Succeed())
		})
	})

	Describe("Loop", func() {
		var (
			reg     *prometheus.Registry
			metrics *transport.Metrics
		)

		BeforeEach(func() {
			reg = prometheus.NewRegistry()
			metrics = transport.NewMetrics(reg)
		})

		It("hands every result to every handler in order", func() {
			session := newScriptedSession(
				step{result: protocol.DefaultTrackData()},
				step{result: protocol.NoResult{Type: 42, Reason: "unknown message type"}},
			)

			var first, second []protocol.Inbound
			loop := transport.NewLoop(session, session, metrics, zap.NewNop(),
				transport.HandlerFunc(func(r protocol.Inbound) { first = append(first, r) }),
				transport.HandlerFunc(func(r protocol.Inbound) { second = append(second, r) }),
			)

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			Expect(loop.Run(ctx)).To(Succeed())
			Expect(first).To(HaveLen(2))
			Expect(second).To(Equal(first))
			Expect(first[0].InboundType()).To(Equal(protocol.InboundTrackData))

			Expect(testutil.GatherAndCount(reg, "racedirector_transport_results_total")).To(Equal(2))
		})

		It("keeps going after a malformed datagram", func() {
			session := newScriptedSession(
				step{err: fmt.Errorf("Failed to decode EntryList: %w", protocol.ErrMalformedMessage)},
				step{result: protocol.DefaultRegistrationResult()},
			)

			var handled []protocol.Inbound
			loop := transport.NewLoop(session, session, metrics, zap.NewNop(),
				transport.HandlerFunc(func(r protocol.Inbound) { handled = append(handled, r) }))

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			Expect(loop.Run(ctx)).To(Succeed())
			Expect(handled).To(Equal([]protocol.Inbound{protocol.DefaultRegistrationResult()}))

			name := "racedirector_transport_malformed_datagrams_total"
			Expect(testutil.GatherAndCompare(reg,
				strings.NewReader(counterText(name, "Datagrams that could not be decoded.", 1)),
				name)).To(Succeed())
		})

		It("stops when receiving fails", func() {
			receiveErr := fmt.Errorf("Failed to receive datagram: %w", client.ErrTransport)
			session := newScriptedSession(step{err: receiveErr})

			loop := transport.NewLoop(session, session, metrics, zap.NewNop())

			err := loop.Run(context.Background())
			Expect(errors.Is(err, client.ErrTransport)).To(BeTrue())

			name := "racedirector_transport_receive_failures_total"
			Expect(testutil.GatherAndCompare(reg,
				strings.NewReader(counterText(name, "Socket receive failures.", 1)),
				name)).To(Succeed())
		})

		It("runs a session against a broadcasting server", func() {
			local, err := transport.Listen(transport.Options{Host: "127.0.0.1", Port: 0})
			Expect(err).To(Succeed())

			server, err := net.ListenPacket("udp", "127.0.0.1:0")
			Expect(err).To(Succeed())
			defer server.Close()

			conn, err := client.New(client.Config{
				DisplayName: "director",
				Destination: server.LocalAddr().String(),
			}, local, zap.NewNop())
			Expect(err).To(Succeed())

			results := make(chan protocol.Inbound, 16)
			loop := transport.NewLoop(conn, local, metrics, zap.NewNop(),
				transport.HandlerFunc(func(r protocol.Inbound) { results <- r }))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- loop.Run(ctx)
			}()

			Expect(conn.RequestConnection()).To(Succeed())

			buf := make([]byte, client.MaxDatagramSize)
			Expect(server.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
			n, addr, err := server.ReadFrom(buf)
			Expect(err).To(Succeed())
			Expect(n).To(BeNumerically(">", 0))
			Expect(buf[0]).To(Equal(byte(protocol.OutboundRegisterCommandApplication)))

			_, err = server.WriteTo([]byte{byte(protocol.InboundEntryList), 1}, addr)
			Expect(err).To(Succeed())
			_, err = server.WriteTo(protocoltest.RegistrationResult(3, 1, 0, ""), addr)
			Expect(err).To(Succeed())

			Eventually(results, 2*time.Second).Should(Receive(Equal(protocol.RegistrationResult{
				ConnectionID:      3,
				ConnectionSuccess: 1,
			})))
			Expect(conn.State()).To(Equal(client.StateRegistered))

			cancel()
			Eventually(done, 2*time.Second).Should(Receive(BeNil()))
		})
	})
})
