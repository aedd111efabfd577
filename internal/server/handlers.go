package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// healthHandler reports ledger and cache connectivity
func (s *Server) healthHandler(c *gin.Context) {
	if err := s.db.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "mongo": err.Error()})
		return
	}

	if err := s.cache.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "redis": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
