package cmd

import (
	"context"
	"errors"
	"net"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"

	"github.com/luma/racedirector/client"
	"github.com/luma/racedirector/internal/env"
	"github.com/luma/racedirector/protocol"
)

var _ = Describe("serve()", func() {
	config := func(destination string) *env.Config {
		conf, err := env.ProcessConfig(context.Background(), envconfig.MapLookuper(map[string]string{
			"ACCD_BIND_ADDR":        "127.0.0.1:0",
			"ACCD_DESTINATION_ADDR": destination,
			"ACCD_REUSEPORT":        "false",
		}))
		Expect(err).To(Succeed())

		return conf
	}

	It("fails when the registration request cannot be sent", func() {
		// An IPv4 socket cannot send to an IPv6 destination
		conf := config("[::1]:9000")

		done := make(chan error, 1)
		go func() {
			done <- serve(context.Background(), conf, "127.0.0.1:0", zap.NewNop())
		}()

		var err error
		Eventually(done, 5*time.Second).Should(Receive(&err))
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, client.ErrTransport)).To(BeTrue())
	})

	It("registers and stops cleanly when cancelled", func() {
		server, err := net.ListenPacket("udp", "127.0.0.1:0")
		Expect(err).To(Succeed())
		defer server.Close()

		conf := config(server.LocalAddr().String())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- serve(ctx, conf, "127.0.0.1:0", zap.NewNop())
		}()

		buf := make([]byte, client.MaxDatagramSize)
		Expect(server.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
		n, _, err := server.ReadFrom(buf)
		Expect(err).To(Succeed())
		Expect(n).To(BeNumerically(">", 0))
		Expect(buf[0]).To(Equal(byte(protocol.OutboundRegisterCommandApplication)))

		cancel()
		Eventually(done, 5*time.Second).Should(Receive(BeNil()))
	})
})
