package migrations

import (
	"pospay/app/models/erpsync"
	"pospay/app/models/payment"
	"pospay/app/models/receipt"
)

// RegisterTables 返回需要迁移的表的模型列表
func RegisterTables() []interface{} {
	return []interface{}{
		&payment.Payment{},
		&receipt.Receipt{},
		&erpsync.ErpSync{},
	}
}
