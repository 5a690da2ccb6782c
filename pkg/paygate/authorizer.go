package paygate

// Card 授权所需的卡信息
type Card struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// Decision 授权结果
type Decision struct {
	Accepted bool
	Reason   string
}

// Authorizer 授权能力接口
// 状态机只依赖这个接口，接入真实卡组织时替换实现即可
type Authorizer interface {
	Authorize(card Card) Decision
}

// 模拟授权的响应码
const (
	ReasonAuthorized        = "authorized"
	ReasonBankDecline       = "bank_decline"
	ReasonInvalidCardNumber = "invalid_card_number"
	ReasonInvalidCVV        = "invalid_cvv"
	ReasonInvalidExpiry     = "invalid_expiry"
)

// SimulatedAuthorizer 模拟授权器
// 判定规则是确定性的：卡号末位为偶数则通过，否则拒绝
type SimulatedAuthorizer struct{}

// NewSimulatedAuthorizer 创建模拟授权器
func NewSimulatedAuthorizer() SimulatedAuthorizer {
	return SimulatedAuthorizer{}
}

// Authorize 对同样的卡信息永远返回同样的结果
func (SimulatedAuthorizer) Authorize(card Card) Decision {
	if !isDigits(card.Number) || len(card.Number) < 12 || len(card.Number) > 19 {
		return Decision{Accepted: false, Reason: ReasonInvalidCardNumber}
	}
	if !isDigits(card.CVV) || len(card.CVV) < 3 || len(card.CVV) > 4 {
		return Decision{Accepted: false, Reason: ReasonInvalidCVV}
	}
	if !containsSlash(card.Expiry) {
		return Decision{Accepted: false, Reason: ReasonInvalidExpiry}
	}

	last := card.Number[len(card.Number)-1]
	if (last-'0')%2 == 0 {
		return Decision{Accepted: true, Reason: ReasonAuthorized}
	}
	return Decision{Accepted: false, Reason: ReasonBankDecline}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsSlash(s string) bool {
	for _, r := range s {
		if r == '/' {
			return true
		}
	}
	return false
}
