package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/events"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

const defaultKeepAlive = 25 * time.Second

// EventsHandler streams a visitor's change events over Server-Sent Events.
// Mounted views reload the affected state when an event arrives.
type EventsHandler struct {
	bus       *events.Bus
	keepAlive time.Duration
	logger    *logrus.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(bus *events.Bus, logger *logrus.Logger) *EventsHandler {
	return &EventsHandler{
		bus:       bus,
		keepAlive: defaultKeepAlive,
		logger:    logger,
	}
}

// Stream handles GET /events
func (h *EventsHandler) Stream(c *gin.Context) {
	visitor := middleware.VisitorID(c)
	sub := h.bus.Subscribe(visitor)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	h.logger.WithField("visitor", visitor).Debug("Event stream opened")

	ready := false
	c.Stream(func(w io.Writer) bool {
		if !ready {
			ready = true
			c.SSEvent("ready", gin.H{"visitor": visitor})
			return true
		}

		select {
		case <-c.Request.Context().Done():
			return false
		case evt, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(string(evt.Topic), evt)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})

	h.logger.WithField("visitor", visitor).Debug("Event stream closed")
}
