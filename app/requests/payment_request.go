package requests

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// InitiatePaymentRequest 发起支付请求
type InitiatePaymentRequest struct {
	ClientPaymentID string  `json:"client_payment_id" valid:"required"`
	Amount          float64 `json:"amount" valid:"required"`
	Currency        string  `json:"currency"`
	Mode            string  `json:"mode" valid:"required"`
}

// ValidateInitiatePayment 验证发起支付请求
func ValidateInitiatePayment(c *gin.Context) (*InitiatePaymentRequest, error) {
	var req InitiatePaymentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	rules := govalidator.MapData{
		"client_payment_id": []string{"required", "min:1", "max:128"},
		"amount":            []string{"required"},
		"mode":              []string{"required", "in:card,cash"},
		"currency":          []string{"max:8"},
	}

	messages := govalidator.MapData{
		"client_payment_id": []string{
			"required:client_payment_id 不能为空",
			"max:client_payment_id 长度不能超过 128 个字符",
		},
		"amount": []string{
			"required:金额不能为空",
		},
		"mode": []string{
			"required:支付方式不能为空",
			"in:支付方式必须是 card 或 cash",
		},
	}

	if err := ValidateStruct(&req, rules, messages); err != nil {
		return nil, err
	}

	// 金额必须为正数
	if req.Amount <= 0 {
		return nil, fmt.Errorf("金额必须大于 0")
	}

	return &req, nil
}

// AuthorizePaymentRequest 授权支付请求
type AuthorizePaymentRequest struct {
	Card struct {
		Number string `json:"number"`
		Expiry string `json:"expiry"`
		CVV    string `json:"cvv"`
	} `json:"card"`
}

// ValidateAuthorizePayment 验证授权支付请求
// 卡信息本身的合法性（卡号位数、CVV 等）由授权器判定，这里只要求字段存在
func ValidateAuthorizePayment(c *gin.Context) (*AuthorizePaymentRequest, error) {
	var req AuthorizePaymentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	if req.Card.Number == "" {
		return nil, fmt.Errorf("card.number 不能为空")
	}

	return &req, nil
}

// ActorRequest 携带操作人的管理请求（审批、强制同步）
type ActorRequest struct {
	Actor string `json:"actor" valid:"required"`
}

// ValidateActor 验证操作人请求
func ValidateActor(c *gin.Context) (*ActorRequest, error) {
	var req ActorRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	rules := govalidator.MapData{
		"actor": []string{"required", "min:1", "max:64"},
	}

	messages := govalidator.MapData{
		"actor": []string{
			"required:操作人不能为空",
			"max:操作人长度不能超过 64 个字符",
		},
	}

	if err := ValidateStruct(&req, rules, messages); err != nil {
		return nil, err
	}

	return &req, nil
}
