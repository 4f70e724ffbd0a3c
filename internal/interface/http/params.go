package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/pkg/apperror"
	"github.com/oksasatya/vpms/pkg/validation"
)

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperror.Validation("invalid "+name, map[string]string{name: "must be a positive integer"}))
		return 0, false
	}
	return id, true
}

// optionalQueryID parses an optional numeric query parameter.
func optionalQueryID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperror.Validation("invalid "+name, map[string]string{name: "must be a positive integer"}))
		return nil, false
	}
	return &id, true
}

// bindJSON binds the request body, recording a VALIDATION error on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(apperror.Validation("invalid payload", validation.ToDetails(err)))
		return false
	}
	return true
}

func searchSize(c *gin.Context) int {
	n, _ := strconv.Atoi(c.Query("size"))
	return n
}
