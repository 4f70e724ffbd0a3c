package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	repo "github.com/oksasatya/vpms/internal/domain/repository"
)

type HealthHandler struct {
	Store repo.Pinger
	Redis *redis.Client
}

func NewHealthHandler(store repo.Pinger, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{Store: store, Redis: rdb}
}

// Health answers 200 while the store is reachable and 503 otherwise.
// Redis is reported but never fails the check.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{"status": "ok", "db": "reachable", "redis": "disabled", "time": time.Now().UTC()}
	status := http.StatusOK
	if h.Store == nil || h.Store.Ping(ctx) != nil {
		body["status"], body["db"] = "error", "unreachable"
		status = http.StatusServiceUnavailable
	}
	if h.Redis != nil {
		body["redis"] = "reachable"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			body["redis"] = "unreachable"
		}
	}
	c.JSON(status, body)
}
