package handler

import (
	"context"
	"net/http"
	"time"

	"fuelstation/internal/apierror"
	"fuelstation/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports dead-lettered jobs; never
// exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		dead := gin.H{}
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			for _, q := range []string{worker.QueueShiftReport, worker.QueueEmail} {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					dead[q] = n
				}
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":        status == http.StatusOK,
			"db":        dbStatus,
			"redis":     redisStatus,
			"dead_jobs": dead,
		})
	}
}

// ReplayDeadJobs godoc
// @Summary Re-queue dead-lettered jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param queue path string true "shift_report or email"
// @Success 200 {object} map[string]int
// @Router /v1/jobs/{queue}/replay [post]
func ReplayDeadJobs(rdb *redis.Client) gin.HandlerFunc {
	queues := map[string]string{"shift_report": worker.QueueShiftReport, "email": worker.QueueEmail}
	return func(c *gin.Context) {
		queue, ok := queues[c.Param("queue")]
		if !ok {
			c.JSON(http.StatusNotFound, apierror.New("Unknown queue"))
			return
		}
		n, err := worker.Replay(c.Request.Context(), rdb, queue)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"replayed": n})
	}
}
