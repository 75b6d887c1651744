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

func (r *Repo) CreatePool(ctx context.Context, p *domain.Pool) error {
	if err := r.getDb(ctx).WithContext(ctx).Create(p).Error; err != nil {
		return xerr.New(xerr.DbError, fmt.Sprintf("create pool failed: %v", err))
	}
	return nil
}

func (r *Repo) GetPool(ctx context.Context, id int64) (*domain.Pool, error) {
	var p domain.Pool
	err := r.getDb(ctx).WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 查不到不是基础设施错误，交给 service 层定性
			return nil, nil
		}
		return nil, xerr.New(xerr.DbError, fmt.Sprintf("get pool failed: %v", err))
	}
	return &p, nil
}

func (r *Repo) GetPoolByName(ctx context.Context, name string) (*domain.Pool, error) {
	var p domain.Pool
	err := r.getDb(ctx).WithContext(ctx).Where("name = ?", name).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, xerr.New(xerr.DbError, fmt.Sprintf("get pool by name failed: %v", err))
	}
	return &p, nil
}

// ListOpenPools 开放中的池子，按名字升序保证输出稳定
func (r *Repo) ListOpenPools(ctx context.Context, asset string) ([]domain.Pool, error) {
	q := r.getDb(ctx).WithContext(ctx).
		Model(&domain.Pool{}).
		Where("status = ?", domain.PoolStatusOpen)
	if asset != "" {
		q = q.Where("asset = ?", asset)
	}

	var pools []domain.Pool
	if err := q.Order("name ASC").Find(&pools).Error; err != nil {
		return nil, xerr.New(xerr.DbError, fmt.Sprintf("list open pools failed: %v", err))
	}
	return pools, nil
}

func (r *Repo) ListPools(ctx context.Context) ([]domain.Pool, error) {
	var pools []domain.Pool
	err := r.getDb(ctx).WithContext(ctx).
		Model(&domain.Pool{}).
		Order("id ASC").
		Find(&pools).Error
	if err != nil {
		return nil, xerr.New(xerr.DbError, fmt.Sprintf("list pools failed: %v", err))
	}
	return pools, nil
}

// IncrementPoolBalance 核心：单条 SQL 条件自增
// 把容量上限和非负下限直接写进 UPDATE 谓词，
// 并发下不可能超容也不可能扣成负数——要么整条生效，要么 RowsAffected=0
func (r *Repo) IncrementPoolBalance(ctx context.Context, id int64, delta decimal.Decimal, now time.Time) (bool, error) {
	res := r.getDb(ctx).WithContext(ctx).
		Model(&domain.Pool{}).
		Where("id = ? AND status = ? AND current_balance + ? >= 0 AND current_balance + ? <= total_capacity",
			id, domain.PoolStatusOpen, delta, delta).
		Updates(map[string]interface{}{
			"current_balance": gorm.Expr("current_balance + ?", delta),
			"updated_at":      now,
		})

	if res.Error != nil {
		return false, xerr.New(xerr.DbError, fmt.Sprintf("increment pool balance failed: %v", res.Error))
	}
	return res.RowsAffected > 0, nil
}

// OverwritePoolBalance 对账专用，绕过增量谓词直接写
func (r *Repo) OverwritePoolBalance(ctx context.Context, id int64, balance decimal.Decimal, now time.Time) error {
	res := r.getDb(ctx).WithContext(ctx).
		Model(&domain.Pool{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_balance": balance,
			"updated_at":      now,
		})
	if res.Error != nil {
		return xerr.New(xerr.DbError, fmt.Sprintf("overwrite pool balance failed: %v", res.Error))
	}
	if res.RowsAffected == 0 {
		return xerr.NewErrCode(xerr.RecordNotFound)
	}
	return nil
}
