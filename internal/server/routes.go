package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/danmuck/tdsbridge/internal/protocol/channel"
	"github.com/danmuck/tdsbridge/internal/transport/ws"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"node":    s.ID,
			"version": "0.0.1",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":       s.hub.Len() > 0,
			"subscribers": s.hub.Len(),
			"peers":       s.peers(),
			"node":        s.ID,
		})
	})

	if s.ws != nil {
		s.router.GET(s.wsPath, gin.WrapH(s.ws.Handler()))
	}

	s.router.POST("/messages", s.postMessage)
}

// postMessage publishes one envelope from the request body on the hub,
// stamped with the request's Origin header. Validation happens in the
// subscribers, so a 202 only means the event was dispatched.
func (s *Server) postMessage(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, ws.MaxFrameBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	delivered := s.hub.Publish(channel.Event{Origin: c.GetHeader("Origin"), Data: body})
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "delivered": delivered})
}

func (s *Server) peers() int {
	if s.ws == nil {
		return 0
	}
	return s.ws.Peers()
}
