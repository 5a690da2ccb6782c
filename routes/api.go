// Package routes 注册路由
package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"pospay/app/http/controllers/api/v1/admin"
	"pospay/app/http/controllers/api/v1/payments"
	"pospay/app/http/middlewares"
	"pospay/pkg/paygate"
	"pospay/pkg/response"
)

// 路由限流配置
const (
	// 🌍 全局限流：每小时每IP 30000 请求
	GlobalRateLimit = "30000-H"
	// 💳 发起/操作支付限流：每小时每IP 1000 请求
	PaymentWriteLimit = "1000-H"
	// 🔍 查询类限流：每分钟每IP 300 请求
	QueryLimit = "300-M"
)

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		response.Data(c, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// 支付服务只在启动时构建一次，配置之后只读
	service := paygate.NewService(paygate.LoadConfig(), paygate.NewSimulatedAuthorizer())

	v1 := r.Group("/v1")

	v1.Use(
		middlewares.Recovery(),
		middlewares.SecurityHeaders(),
		middlewares.LimitIP(GlobalRateLimit),
		middlewares.Cors(),
	)

	pc := payments.NewPaymentsController(service)

	// 💳 支付生命周期路由
	paymentRoutes := v1.Group("/payments")
	{
		// 发起支付（幂等，以 client_payment_id 为幂等键）
		// POST /v1/payments
		paymentRoutes.POST("",
			middlewares.LimitIP(PaymentWriteLimit),
			pc.Store,
		)

		// 授权支付（card 模式）
		// POST /v1/payments/:id/authorize
		paymentRoutes.POST("/:id/authorize",
			middlewares.LimitIP(PaymentWriteLimit),
			pc.Authorize,
		)

		// 确认（收款）支付
		// POST /v1/payments/:id/confirm
		paymentRoutes.POST("/:id/confirm",
			middlewares.LimitIP(PaymentWriteLimit),
			pc.Confirm,
		)

		// 查询
		paymentRoutes.GET("", middlewares.LimitIP(QueryLimit), pc.Index)
		paymentRoutes.GET("/:id", middlewares.LimitIP(QueryLimit), pc.Show)
	}

	// 🧾 收据查询
	// GET /v1/receipts/:receipt_number
	v1.GET("/receipts/:receipt_number",
		middlewares.LimitIP(QueryLimit),
		pc.ShowReceipt,
	)

	// 🛠 管理端路由：审批、ERP 同步队列
	adminRoutes := v1.Group("/admin")
	{
		ac := admin.NewAdminController(service)

		adminRoutes.POST("/payments/:id/approve", ac.Approve)
		adminRoutes.GET("/erp-queue", ac.ErpQueue)
		adminRoutes.POST("/erp-queue/:id/force-sync", ac.ForceSync)
	}
}
