package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dairyline/distributor/pkg/version"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness and database reachability
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		if err := db.Ping(ctx); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"success": code == http.StatusOK,
			"status":  status,
			"version": version.Get(),
		})
	}
}
