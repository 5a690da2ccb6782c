// Package admin 管理端接口：主管审批、ERP 同步队列、强制同步
package admin

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pospay/app/repositories"
	"pospay/app/requests"
	"pospay/pkg/paygate"
	"pospay/pkg/response"
)

type AdminController struct {
	service *paygate.Service
	syncs   *repositories.ErpSyncRepository
}

// NewAdminController 创建管理控制器
func NewAdminController(service *paygate.Service) *AdminController {
	return &AdminController{
		service: service,
		syncs:   repositories.NewErpSyncRepository(),
	}
}

// Approve 主管审批
// POST /v1/admin/payments/:id/approve
func (ac *AdminController) Approve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	request, err := requests.ValidateActor(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	p, err := ac.service.Approve(c.Request.Context(), id, request.Actor)
	if err != nil {
		ac.abortByError(c, err, "审批失败")
		return
	}

	response.Data(c, gin.H{
		"payment_id":  p.ID,
		"approved_by": p.ApprovedBy,
	})
}

// ErpQueue 列出未同步完成的 ERP 条目（pending / failed）
// GET /v1/admin/erp-queue
func (ac *AdminController) ErpQueue(c *gin.Context) {
	entries, err := ac.syncs.ListUnsynced(c.Request.Context())
	if err != nil {
		response.ServerError(c, err, "获取同步队列失败")
		return
	}
	response.Data(c, entries)
}

// ForceSync 管理员强制同步
// 绕过同步结果判定，无条件置为 synced。这是模拟故障类条目的设计逃生通道
// POST /v1/admin/erp-queue/:id/force-sync
func (ac *AdminController) ForceSync(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	request, err := requests.ValidateActor(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	entry, err := ac.syncs.ForceSync(c.Request.Context(), id, request.Actor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c, "该支付没有待同步的条目")
			return
		}
		response.ServerError(c, err, "强制同步失败")
		return
	}

	response.Data(c, entry)
}

// abortByError 领域错误到 HTTP 状态的映射
func (ac *AdminController) abortByError(c *gin.Context, err error, msg string) {
	var ve paygate.ValidationError
	var notFound paygate.NotFoundError
	var invalidState paygate.InvalidStateError

	switch {
	case errors.As(err, &ve):
		response.BadRequest(c, err, "请求参数验证失败")
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
