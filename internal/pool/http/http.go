package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprom "github.com/zsais/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"btcfund.com/internal/pool/http/handler"
	"btcfund.com/internal/pool/http/router"
	"btcfund.com/pkg/middleware"
	"btcfund.com/pkg/ratelimit"
)

func NewRouter(ctx context.Context, addr string, h *handler.Pool) *http.Server {
	// 限流
	store := ratelimit.NewStore(1000, 2000, 10*time.Minute)
	store.StartJanitor(ctx, time.Minute)

	// 监控
	r := gin.New()
	p := ginprom.NewPrometheus("btcfund")
	p.Use(r)

	r.Use(
		otelgin.Middleware("pool-service"),
		middleware.ReqId(),
		cors.Default(),
		middleware.Recover(),
		middleware.RateLimit(store),
	)

	api := r.Group("/api")
	router.Pool(api, h)

	s := &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return s
}
