// Package api exposes a read-only view of the job store over HTTP.
package api

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"onlinejobs-scout/internal/models"

	"github.com/gin-gonic/gin"
)

const defaultUnsentLimit = 50

// StatsSource is the part of the store the API reads.
type StatsSource interface {
	Stats(ctx context.Context) (models.Stats, error)
	Unsent(ctx context.Context) ([]models.JobRecord, error)
}

func NewRouter(store StatsSource) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "OnlineJobs.ph scout API is running!",
			"status":  "healthy",
		})
	})

	r.GET("/health", func(c *gin.Context) {
		if _, err := store.Stats(c.Request.Context()); err != nil {
			log.Printf("[server] health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/stats", func(c *gin.Context) {
		st, err := store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, st)
	})

	r.GET("/jobs/unsent", func(c *gin.Context) {
		limit := defaultUnsentLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		jobs, err := store.Unsent(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		total := len(jobs)
		if len(jobs) > limit {
			jobs = jobs[:limit]
		}
		if jobs == nil {
			jobs = []models.JobRecord{}
		}
		c.JSON(http.StatusOK, gin.H{"total": total, "jobs": jobs})
	})

	return r
}
