package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// 单资产服务，目前只支持 BTC
const AssetBTC = "BTC"

type PoolStatus string

const (
	PoolStatusOpen   PoolStatus = "open"
	PoolStatusFull   PoolStatus = "full"
	PoolStatusClosed PoolStatus = "closed"
)

// Pool 固定期限的理财池
// 不变量: 0 <= current_balance <= total_capacity
// current_balance 只能由 BalanceService 通过条件自增修改，禁止整行覆盖
type Pool struct {
	ID             int64           `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Asset          string          `gorm:"size:16;not null" json:"asset"`
	TotalCapacity  decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"totalCapacity"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"currentBalance"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(10,6);not null" json:"interestRate"`
	StartDate      time.Time       `gorm:"not null" json:"startDate"`
	EndDate        time.Time       `gorm:"not null" json:"endDate"`
	Status         PoolStatus      `gorm:"size:16;not null;index" json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// PoolSpec 创建池子的入参
type PoolSpec struct {
	Name          string
	TotalCapacity decimal.Decimal
	InterestRate  decimal.Decimal
	StartDate     time.Time
	EndDate       time.Time
}

// PoolRepo 池子仓储接口
// Get 系列查不到时返回 (nil, nil)，由 service 层决定是不是业务错误
type PoolRepo interface {
	// Transaction 开启事务，fn 内所有仓储调用走同一个 tx
	Transaction(ctx context.Context, fn func(txCtx context.Context) error) error

	CreatePool(ctx context.Context, p *Pool) error
	GetPool(ctx context.Context, id int64) (*Pool, error)
	GetPoolByName(ctx context.Context, name string) (*Pool, error)
	ListOpenPools(ctx context.Context, asset string) ([]Pool, error)
	ListPools(ctx context.Context) ([]Pool, error)

	// IncrementPoolBalance 单条 SQL 条件自增 (核心)
	// 谓词: status=open 且 0 <= current_balance+delta <= total_capacity
	// 谓词不满足时 applied=false 且不落任何修改
	IncrementPoolBalance(ctx context.Context, id int64, delta decimal.Decimal, now time.Time) (applied bool, err error)

	// OverwritePoolBalance 只给对账用，按账本重算后的全量写入
	OverwritePoolBalance(ctx context.Context, id int64, balance decimal.Decimal, now time.Time) error
}
