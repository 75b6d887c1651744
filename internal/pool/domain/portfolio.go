package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UserPortfolio 用户在某个池子里的持仓，(user_id, pool_id) 唯一
// 余额减到 0 也不删行
type UserPortfolio struct {
	ID                 int64           `gorm:"primaryKey" json:"-"`
	UserID             int64           `gorm:"uniqueIndex:idx_user_pool;not null" json:"userId"`
	PoolID             int64           `gorm:"uniqueIndex:idx_user_pool;not null" json:"poolId"`
	AmountInvested     decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"amountInvested"`
	LastDepositDate    time.Time       `json:"lastDepositDate"`
	LastWithdrawalDate *time.Time      `json:"lastWithdrawalDate,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// PortfolioTouch 标记本次变更要刷新哪个时间戳
type PortfolioTouch uint8

const (
	TouchDeposit PortfolioTouch = iota + 1
	TouchWithdraw
)

// PortfolioRepo 持仓仓储接口
type PortfolioRepo interface {
	// GetPortfolio 查不到返回 (nil, nil)
	GetPortfolio(ctx context.Context, userID, poolID int64) (*UserPortfolio, error)
	ListPortfolios(ctx context.Context, userID int64) ([]UserPortfolio, error)
	ListPoolPortfolios(ctx context.Context, poolID int64) ([]UserPortfolio, error)

	// UpsertPortfolio 找不到就建 (find-or-create)，找到就按 delta 增量更新
	// created 区分首次建仓和追加 (Created|Found 标记)
	// applied=false 表示扣减谓词不满足 (amount_invested + delta < 0)，未落修改
	UpsertPortfolio(ctx context.Context, userID, poolID int64, delta decimal.Decimal, touch PortfolioTouch, now time.Time) (row *UserPortfolio, created bool, applied bool, err error)

	// OverwritePortfolioStake 只给对账用
	OverwritePortfolioStake(ctx context.Context, userID, poolID int64, amount decimal.Decimal, now time.Time) error
}
