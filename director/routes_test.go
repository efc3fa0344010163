package director_test

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/racedirector/client"
	"github.com/luma/racedirector/director"
	"github.com/luma/racedirector/protocol"
	"github.com/luma/racedirector/storage"
)

var _ = Describe("Routes", func() {
	var (
		store     *storage.InmemoryStore
		commander *fakeCommander
		d         *director.Director
		router    *gin.Engine
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		store = storage.NewInmemoryStore(nil)
		commander = &fakeCommander{}
		d = director.New(commander, store, zap.NewNop())

		router = gin.New()
		d.RegisterRoutes(router)

		d.Handle(protocol.TrackData{
			ConnectionID: 7,
			TrackName:    "Spa",
			CameraSets:   []protocol.CameraSet{{Name: "set1", Cameras: []string{"cam1", "cam2"}}},
			HUDPages:     []string{"Blank", "Broadcasting"},
		})
	})

	AfterEach(func() {
		store.Close()
	})

	Describe("GET /state", func() {
		It("serves a published document", func() {
			w := do(http.MethodGet, "/state/track/trackName", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal(`"Spa"`))
		})

		It("serves everything under the root", func() {
			w := do(http.MethodGet, "/state/", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"trackName":"Spa"`))
		})

		It("returns 404 for missing keys", func() {
			w := do(http.MethodGet, "/state/session", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /updates", func() {
		var server *httptest.Server

		BeforeEach(func() {
			server = httptest.NewServer(router)
		})

		AfterEach(func() {
			server.Close()
		})

		It("streams store updates under the requested key", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/updates?key=track", nil)
			Expect(err).To(Succeed())

			resp, err := server.Client().Do(req)
			Expect(err).To(Succeed())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/event-stream"))

			d.Handle(protocol.RegistrationResult{ConnectionID: 7, ConnectionSuccess: 1})
			d.Handle(protocol.TrackData{ConnectionID: 7, TrackName: "Monza"})

			body := bufio.NewReader(resp.Body)

			event, err := body.ReadString('\n')
			Expect(err).To(Succeed())
			Expect(event).To(Equal("event:track\n"))

			data, err := body.ReadString('\n')
			Expect(err).To(Succeed())
			Expect(data).To(HavePrefix("data:"))
			Expect(data).To(ContainSubstring(`"trackName":"Monza"`))
		})

		It("ends the stream when the store closes", func() {
			resp, err := server.Client().Get(server.URL + "/updates")
			Expect(err).To(Succeed())
			defer resp.Body.Close()

			Expect(store.Close()).To(Succeed())

			_, err = bufio.NewReader(resp.Body).ReadString('\n')
			Expect(err).To(HaveOccurred())
		})
	})

	It("serves the leaderboard", func() {
		d.Handle(protocol.EntryList{ConnectionID: 7, Cars: []protocol.CarEntry{protocol.NewCarEntry(3)}})

		w := do(http.MethodGet, "/leaderboard", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"carIndex":3`))
	})

	Describe("POST /camera", func() {
		It("switches to a known camera", func() {
			w := do(http.MethodPost, "/camera", `{"cameraSet":"set1","camera":"cam2"}`)
			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(commander.focus).To(Equal([]focusCall{{cameraSet: "set1", camera: "cam2"}}))
		})

		It("rejects cameras the track does not have", func() {
			w := do(http.MethodPost, "/camera", `{"cameraSet":"set1","camera":"helicam"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(commander.focus).To(BeEmpty())
		})

		It("rejects incomplete requests", func() {
			w := do(http.MethodPost, "/camera", `{"cameraSet":"set1"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /focus", func() {
		It("focuses a car and keeps the camera", func() {
			w := do(http.MethodPost, "/focus", `{"carIndex":12}`)
			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(commander.focus).To(Equal([]focusCall{{carIndex: omit.From(uint16(12))}}))
		})

		It("reports a session that is not registered", func() {
			commander.err = fmt.Errorf("Cannot send command in state Idle: %w", client.ErrNotRegistered)

			w := do(http.MethodPost, "/focus", `{"carIndex":12}`)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("reports send failures", func() {
			commander.err = fmt.Errorf("Failed to send ChangeFocus: %w", client.ErrTransport)

			w := do(http.MethodPost, "/focus", `{"carIndex":12}`)
			Expect(w.Code).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("POST /hud", func() {
		It("requests a known page", func() {
			w := do(http.MethodPost, "/hud", `{"page":"Broadcasting"}`)
			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(commander.pages).To(Equal([]string{"Broadcasting"}))
		})

		It("rejects unknown pages", func() {
			w := do(http.MethodPost, "/hud", `{"page":"Timing"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /replay", func() {
		It("replays the last seconds", func() {
			d.Handle(protocol.RealtimeSessionUpdate{SessionTime: 90 * time.Second, FocusedCarIndex: 3})

			w := do(http.MethodPost, "/replay", `{"seconds":30}`)
			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(commander.replays).To(HaveLen(1))
			Expect(commander.replays[0].start).To(Equal(60 * time.Second))
			Expect(commander.replays[0].duration).To(Equal(30 * time.Second))
		})

		It("needs a session update first", func() {
			w := do(http.MethodPost, "/replay", `{"seconds":10}`)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})
})
