package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"btcfund.com/pkg/common"
	"btcfund.com/pkg/logger"
)

func ReqId() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(common.HeaderRequestID)
		if rid == "" {
			rid = common.New()
		}
		c.Set(common.CtxKeyRequestID, rid)
		c.Set(logger.TraceIdKey, rid)
		// 写入 request context，后续 service 层日志能带上链路信息
		ctx := context.WithValue(c.Request.Context(), common.CtxKeyRequestID, rid)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
