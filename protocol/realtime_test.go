package protocol_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/tidwall/gjson"

	"github.com/luma/racedirector/protocol"
)

var _ = Describe("RealtimeSessionUpdate", func() {
	Describe("MarshalJSON()", func() {
		It("writes the session clock in milliseconds", func() {
			data, err := json.Marshal(protocol.RealtimeSessionUpdate{
				SessionTime:    90500 * time.Millisecond,
				SessionEndTime: time.Hour,
				TimeOfDay:      14 * time.Hour,
				ActiveCamera:   "cam1",
				BestSessionLap: protocol.LapInfo{LapTimeMS: 138000},
			})
			Expect(err).To(Succeed())

			doc := gjson.ParseBytes(data)
			Expect(doc.Get("sessionTimeMs").Int()).To(Equal(int64(90500)))
			Expect(doc.Get("sessionEndTimeMs").Int()).To(Equal(int64(3600000)))
			Expect(doc.Get("sessionRemainingTimeMs").Int()).To(Equal(int64(3509500)))
			Expect(doc.Get("timeOfDayMs").Int()).To(Equal(int64(50400000)))
			Expect(doc.Get("bestSessionLap.lapTimeMs").Int()).To(Equal(int64(138000)))
			Expect(doc.Get("activeCamera").String()).To(Equal("cam1"))

			Expect(doc.Get("sessionTime").Exists()).To(BeFalse())
			Expect(doc.Get("timeOfDay").Exists()).To(BeFalse())
		})

		It("is used when the update is nested in another document", func() {
			data, err := json.Marshal(map[string]interface{}{
				"session": protocol.RealtimeSessionUpdate{SessionTime: 2 * time.Second},
			})
			Expect(err).To(Succeed())
			Expect(gjson.GetBytes(data, "session.sessionTimeMs").Int()).To(Equal(int64(2000)))
		})
	})
})
