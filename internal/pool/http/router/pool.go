package router

import (
	"github.com/gin-gonic/gin"

	"btcfund.com/internal/pool/http/handler"
)

func Pool(api *gin.RouterGroup, h *handler.Pool) {
	pools := api.Group("/pools")
	{
		pools.GET("", h.List)
		pools.POST("", h.Create)
		pools.POST("/deposit", h.Deposit)
		pools.POST("/withdraw", h.Withdraw)
		pools.GET("/transactions/:userId", h.Transactions)
		pools.GET("/profile/:userId", h.Profile)
		// 运维对账入口，上线要挂权限
		pools.POST("/reconcile", h.Reconciliation)
	}
}
