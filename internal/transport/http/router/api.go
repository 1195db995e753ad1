package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-gin-bookstore/internal/core/cache"
	"go-gin-bookstore/internal/service"
	mdw "go-gin-bookstore/internal/transport/http/middleware"
)

type Deps struct {
	Auth        *service.AuthService
	Books       *service.BookService
	Cache       *cache.Cache // 可为 nil，未配置 redis 时直连 DB
	UploadDir   string
	MaxUploadMB int
}

func NewAPIEngine(l *zap.Logger, d Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// 鉴权分组：/me、写操作、上传都挂这里
	authed := api.Group("")
	authed.Use(mdw.AuthBearer(d.Auth, ""))

	mountAuthRoutes(api, authed, d)
	mountBookRoutes(api, authed, d)
	mountUploadRoutes(authed, d)

	return r
}
