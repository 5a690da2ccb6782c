// Package payments 支付相关接口
package payments

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pospay/app/requests"
	"pospay/pkg/paygate"
	"pospay/pkg/response"
)

type PaymentsController struct {
	service *paygate.Service
}

// NewPaymentsController 创建支付控制器
func NewPaymentsController(service *paygate.Service) *PaymentsController {
	return &PaymentsController{
		service: service,
	}
}

// Store 发起支付（幂等）
// POST /v1/payments
func (pc *PaymentsController) Store(c *gin.Context) {
	request, err := requests.ValidateInitiatePayment(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	p, created, err := pc.service.Initiate(c.Request.Context(), paygate.InitiateParams{
		ClientPaymentID: request.ClientPaymentID,
		Amount:          decimal.NewFromFloat(request.Amount),
		Currency:        request.Currency,
		Mode:            request.Mode,
	})
	if err != nil {
		var ve paygate.ValidationError
		if errors.As(err, &ve) {
			response.BadRequest(c, err, "请求参数验证失败")
			return
		}
		response.ServerError(c, err, "发起支付失败")
		return
	}

	// 幂等重放返回既有记录，不重复创建
	if created {
		response.Created(c, p, "支付已发起")
		return
	}
	response.Data(c, p)
}

// Authorize 授权支付（card 模式）
// POST /v1/payments/:id/authorize
func (pc *PaymentsController) Authorize(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	request, err := requests.ValidateAuthorizePayment(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	p, err := pc.service.Authorize(c.Request.Context(), id, paygate.Card{
		Number: request.Card.Number,
		Expiry: request.Card.Expiry,
		CVV:    request.Card.CVV,
	})
	if err != nil {
		var declined paygate.DeclinedError
		if errors.As(err, &declined) {
			response.Abort402(c, "支付被拒绝："+declined.Reason)
			return
		}
		pc.abortByError(c, err, "授权支付失败")
		return
	}

	response.Data(c, p)
}

// Confirm 确认（收款）支付
// POST /v1/payments/:id/confirm
func (pc *PaymentsController) Confirm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rc, err := pc.service.Confirm(c.Request.Context(), id)
	if err != nil {
		var gate paygate.ApprovalRequiredError
		if errors.As(err, &gate) {
			response.Abort403(c, "金额达到审批阈值，需主管审批后方可收款")
			return
		}
		pc.abortByError(c, err, "确认支付失败")
		return
	}

	response.Data(c, rc)
}

// Show 获取单笔支付详情（附带收据）
// GET /v1/payments/:id
func (pc *PaymentsController) Show(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := pc.service.Get(c.Request.Context(), id)
	if err != nil {
		pc.abortByError(c, err, "获取支付记录失败")
		return
	}

	data := gin.H{"payment": p}
	if rc, err := pc.service.GetReceiptByPaymentID(c.Request.Context(), id); err == nil {
		data["receipt"] = rc
	}
	response.Data(c, data)
}

// Index 支付记录列表
// GET /v1/payments?limit=N
func (pc *PaymentsController) Index(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	payments, err := pc.service.List(c.Request.Context(), limit)
	if err != nil {
		response.ServerError(c, err, "获取支付列表失败")
		return
	}
	response.Data(c, payments)
}

// ShowReceipt 根据收据编号获取收据
// GET /v1/receipts/:receipt_number
func (pc *PaymentsController) ShowReceipt(c *gin.Context) {
	receiptNumber := c.Param("receipt_number")
	if receiptNumber == "" {
		response.Abort400(c, "缺少收据编号")
		return
	}

	rc, err := pc.service.GetReceipt(c.Request.Context(), receiptNumber)
	if err != nil {
		pc.abortByError(c, err, "获取收据失败")
		return
	}
	response.Data(c, rc)
}

// abortByError 通用的领域错误到 HTTP 状态的映射
func (pc *PaymentsController) abortByError(c *gin.Context, err error, msg string) {
	var notFound paygate.NotFoundError
	var invalidState paygate.InvalidStateError

	switch {
	case errors.As(err, &notFound):
		response.Abort404(c, notFound.Resource+" 不存在")
	case errors.As(err, &invalidState):
		response.Abort409(c, invalidState.Error())
	default:
		response.ServerError(c, err, msg)
	}
}

// parseID 解析路径中的支付 ID
func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Abort400(c, "支付 ID 不合法")
		return 0, false
	}
	return id, true
}
