package protocol_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/racedirector/protocol"
)

var _ = Describe("Codec", func() {
	Describe("Writer", func() {
		It("writes scalars little endian", func() {
			b, err := protocol.NewWriter().
				Uint8(7).
				Uint16(0x0102).
				Int32(-2).
				Float32(1).
				Bytes()

			Expect(err).To(Succeed())
			Expect(b).To(Equal([]byte{
				7,
				0x02, 0x01,
				0xfe, 0xff, 0xff, 0xff,
				0x00, 0x00, 0x80, 0x3f,
			}))
		})

		It("prefixes strings with their u16 byte length", func() {
			b, err := protocol.NewWriter().String("héllo").Bytes()
			Expect(err).To(Succeed())
			Expect(b).To(Equal(append([]byte{6, 0}, []byte("héllo")...)))
		})

		It("refuses strings longer than a u16 length prefix allows", func() {
			_, err := protocol.NewWriter().
				String(strings.Repeat("x", 65536)).
				Uint8(1).
				Bytes()

			Expect(errors.Is(err, protocol.ErrStringTooLong)).To(BeTrue())
		})
	})

	Describe("Reader", func() {
		It("reads back what the writer wrote", func() {
			b, err := protocol.NewWriter().
				Uint8(200).
				Uint16(65535).
				Int32(-123456).
				Float32(-1.5).
				Bool(true).
				String("Monza").
				Bytes()
			Expect(err).To(Succeed())

			r := protocol.NewReader(b)
			Expect(r.Uint8()).To(Equal(uint8(200)))
			Expect(r.Uint16()).To(Equal(uint16(65535)))
			Expect(r.Int32()).To(Equal(int32(-123456)))
			Expect(r.Float32()).To(Equal(float32(-1.5)))
			Expect(r.Bool()).To(BeTrue())
			Expect(r.String()).To(Equal("Monza"))
			Expect(r.Err()).To(Succeed())
			Expect(r.Len()).To(Equal(0))
		})

		It("round trips strings up to the maximum length", func() {
			for _, s := range []string{"", "a", "Nürburgring", "東京", strings.Repeat("ß", 32767), strings.Repeat("x", 65535)} {
				b, err := protocol.NewWriter().String(s).Bytes()
				Expect(err).To(Succeed())

				r := protocol.NewReader(b)
				Expect(r.String()).To(Equal(s))
				Expect(r.Err()).To(Succeed())
			}
		})

		It("fails with ErrMalformedMessage when the datagram is too short", func() {
			r := protocol.NewReader([]byte{1, 2, 3})
			Expect(r.Uint16()).To(Equal(uint16(0x0201)))
			Expect(r.Int32()).To(BeZero())
			Expect(errors.Is(r.Err(), protocol.ErrMalformedMessage)).To(BeTrue())
		})

		It("keeps the first error and returns zero values afterwards", func() {
			r := protocol.NewReader([]byte{5, 0, 'a'})
			Expect(r.String()).To(BeEmpty())
			first := r.Err()
			Expect(first).To(HaveOccurred())

			Expect(r.Uint8()).To(BeZero())
			Expect(r.Err()).To(Equal(first))
		})

		It("fails on strings that are not valid UTF-8", func() {
			r := protocol.NewReader([]byte{2, 0, 0xff, 0xfe})
			Expect(r.String()).To(BeEmpty())
			Expect(errors.Is(r.Err(), protocol.ErrMalformedMessage)).To(BeTrue())
		})

		It("returns every unread byte from Remaining", func() {
			r := protocol.NewReader([]byte{1, 'O', 'K'})
			Expect(r.Uint8()).To(Equal(uint8(1)))
			Expect(r.Remaining()).To(Equal([]byte("OK")))
			Expect(r.Len()).To(Equal(0))
		})
	})
})
