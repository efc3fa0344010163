package director

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/luma/racedirector/client"
	"github.com/luma/racedirector/storage"
)

type cameraRequest struct {
	CameraSet string `json:"cameraSet" binding:"required"`
	Camera    string `json:"camera" binding:"required"`
}

type focusRequest struct {
	CarIndex  *uint16 `json:"carIndex"`
	CameraSet string  `json:"cameraSet"`
	Camera    string  `json:"camera"`
}

type hudRequest struct {
	Page string `json:"page" binding:"required"`
}

type replayRequest struct {
	Seconds float64 `json:"seconds" binding:"required,gt=0"`
}

// RegisterRoutes mounts the status and control routes on r.
func (d *Director) RegisterRoutes(r gin.IRouter) {
	r.GET("/state/*key", d.getState)
	r.GET("/updates", d.streamUpdates)
	r.GET("/leaderboard", d.getLeaderboard)
	r.POST("/camera", d.postCamera)
	r.POST("/focus", d.postFocus)
	r.POST("/hud", d.postHUD)
	r.POST("/replay", d.postReplay)
}

// getState serves the published state documents. /state/cars/5 reads the
// store key cars.5, /state/ the whole document.
func (d *Director) getState(c *gin.Context) {
	key := strings.ReplaceAll(strings.Trim(c.Param("key"), "/"), "/", ".")

	value, err := d.store.Get(c.Request.Context(), []byte(key))
	if errors.Is(err, storage.ErrKeyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "key": key})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", value)
}

// streamUpdates sends every store update as a server-sent event named after
// its key until the client goes away. ?key=session only streams the session
// and anything below it.
func (d *Director) streamUpdates(c *gin.Context) {
	filter := c.Query("key")

	updates := d.store.ListenToUpdates()
	defer d.store.Unlisten(updates)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case update, ok := <-updates:
			if !ok {
				return
			}

			key := string(update.Key)
			if filter != "" && key != filter && !strings.HasPrefix(key, filter+".") {
				continue
			}

			c.SSEvent(key, string(update.Value))
			c.Writer.Flush()
		}
	}
}

func (d *Director) getLeaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, d.Leaderboard())
}

func (d *Director) postCamera(c *gin.Context) {
	var req cameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !d.knownCamera(req.CameraSet, req.Camera) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown camera"})
		return
	}

	d.respond(c, d.commander.SetCamera(req.CameraSet, req.Camera))
}

func (d *Director) postFocus(c *gin.Context) {
	var req focusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var carIndex omit.Val[uint16]
	if req.CarIndex != nil {
		carIndex = omit.From(*req.CarIndex)
	}

	if req.CameraSet != "" && req.Camera != "" && !d.knownCamera(req.CameraSet, req.Camera) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown camera"})
		return
	}

	d.respond(c, d.commander.SetFocus(carIndex, req.CameraSet, req.Camera))
}

func (d *Director) postHUD(c *gin.Context) {
	var req hudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if pages := d.Track().HUDPages; len(pages) > 0 && !lo.Contains(pages, req.Page) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown HUD page"})
		return
	}

	d.respond(c, d.commander.RequestHUDPage(req.Page))
}

func (d *Director) postReplay(c *gin.Context) {
	var req replayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d.respond(c, d.ReplayLast(time.Duration(req.Seconds*float64(time.Second))))
}

// knownCamera only rejects cameras once the track's camera sets are known.
func (d *Director) knownCamera(cameraSet, camera string) bool {
	track := d.Track()
	if len(track.CameraSets) == 0 {
		return true
	}

	cameras, ok := track.Cameras(cameraSet)
	return ok && lo.Contains(cameras, camera)
}

func (d *Director) respond(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.Status(http.StatusAccepted)

	case errors.Is(err, client.ErrNotRegistered), errors.Is(err, ErrNoSession):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, client.ErrTransport):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
