package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/analytica/backend/internal/model"
)

// 헬스체크 엔드포인트
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

// 루트 엔드포인트
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.RootResponse{
		Status:  "ok",
		Message: "analytica API server is running",
	})
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ready DB 연결 확인용 엔드포인트
func Ready(db pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if db == nil || db.Ping(ctx) != nil {
			c.JSON(http.StatusServiceUnavailable, model.RootResponse{Status: "unavailable", Message: "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, model.RootResponse{Status: "ok", Message: "ready"})
	}
}
