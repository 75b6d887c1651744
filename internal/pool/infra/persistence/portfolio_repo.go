package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"btcfund.com/internal/pool/domain"
	"btcfund.com/pkg/xerr"
)

func (r *Repo) GetPortfolio(ctx context.Context, userID, poolID int64) (*domain.UserPortfolio, error) {
	var row domain.UserPortfolio
	err := r.getDb(ctx).WithContext(ctx).
		Where("user_id = ? AND pool_id = ?", userID, poolID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, xerr.New(xerr.DbError, fmt.Sprintf("get portfolio failed: %v", err))
	}
	return &row, nil
}

func (r *Repo) ListPortfolios(ctx context.Context, userID int64) ([]domain.UserPortfolio, error) {
	// 防呆：userID=0 不要全表扫
	if userID == 0 {
		return []domain.UserPortfolio{}, nil
	}
	var rows []domain.UserPortfolio
	err := r.getDb(ctx).WithContext(ctx).
		Model(&domain.UserPortfolio{}).
		Where("user_id = ?", userID).
		Order("pool_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, xerr.New(xerr.DbError, fmt.Sprintf("list portfolios failed: %v", err))
	}
	return rows, nil
}

func (r *Repo) ListPoolPortfolios(ctx context.Context, poolID int64) ([]domain.UserPortfolio, error) {
	var rows []domain.UserPortfolio
	err := r.getDb(ctx).WithContext(ctx).
		Model(&domain.UserPortfolio{}).
		Where("pool_id = ?", poolID).
		Order("user_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, xerr.New(xerr.DbError, fmt.Sprintf("list pool portfolios failed: %v", err))
	}
	return rows, nil
}

// UpsertPortfolio find-or-create，返回 Created|Found 标记
// 扣减路径把 amount_invested + delta >= 0 写进 UPDATE 谓词，
// 并发下持仓不可能扣成负数；谓词不满足时 applied=false
func (r *Repo) UpsertPortfolio(ctx context.Context, userID, poolID int64, delta decimal.Decimal, touch domain.PortfolioTouch, now time.Time) (*domain.UserPortfolio, bool, bool, error) {
	db := r.getDb(ctx).WithContext(ctx)

	var row domain.UserPortfolio
	err := db.Where("user_id = ? AND pool_id = ?", userID, poolID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if delta.Sign() < 0 {
			// 没有持仓就没得扣
			return nil, false, false, nil
		}
		row = domain.UserPortfolio{
			UserID:          userID,
			PoolID:          poolID,
			AmountInvested:  delta,
			LastDepositDate: now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := db.Create(&row).Error; err != nil {
			return nil, false, false, xerr.New(xerr.DbError, fmt.Sprintf("create portfolio failed: %v", err))
		}
		return &row, true, true, nil
	}
	if err != nil {
		return nil, false, false, xerr.New(xerr.DbError, fmt.Sprintf("find portfolio failed: %v", err))
	}

	updates := map[string]interface{}{
		"amount_invested": gorm.Expr("amount_invested + ?", delta),
		"updated_at":      now,
	}
	switch touch {
	case domain.TouchDeposit:
		updates["last_deposit_date"] = now
	case domain.TouchWithdraw:
		updates["last_withdrawal_date"] = now
	}

	res := db.Model(&domain.UserPortfolio{}).
		Where("user_id = ? AND pool_id = ? AND amount_invested + ? >= 0", userID, poolID, delta).
		Updates(updates)
	if res.Error != nil {
		return nil, false, false, xerr.New(xerr.DbError, fmt.Sprintf("update portfolio failed: %v", res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, false, false, nil
	}

	// 回读拿最新值
	var fresh domain.UserPortfolio
	if err := db.Where("user_id = ? AND pool_id = ?", userID, poolID).First(&fresh).Error; err != nil {
		return nil, false, false, xerr.New(xerr.DbError, fmt.Sprintf("reload portfolio failed: %v", err))
	}
	return &fresh, false, true, nil
}

// OverwritePortfolioStake 对账专用：不存在就建行，存在就全量写
func (r *Repo) OverwritePortfolioStake(ctx context.Context, userID, poolID int64, amount decimal.Decimal, now time.Time) error {
	db := r.getDb(ctx).WithContext(ctx)

	var row domain.UserPortfolio
	err := db.Where("user_id = ? AND pool_id = ?", userID, poolID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = domain.UserPortfolio{
			UserID:          userID,
			PoolID:          poolID,
			AmountInvested:  amount,
			LastDepositDate: now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := db.Create(&row).Error; err != nil {
			return xerr.New(xerr.DbError, fmt.Sprintf("create portfolio failed: %v", err))
		}
		return nil
	}
	if err != nil {
		return xerr.New(xerr.DbError, fmt.Sprintf("find portfolio failed: %v", err))
	}

	res := db.Model(&domain.UserPortfolio{}).
		Where("user_id = ? AND pool_id = ?", userID, poolID).
		Updates(map[string]interface{}{
			"amount_invested": amount,
			"updated_at":      now,
		})
	if res.Error != nil {
		return xerr.New(xerr.DbError, fmt.Sprintf("overwrite portfolio failed: %v", res.Error))
	}
	return nil
}
